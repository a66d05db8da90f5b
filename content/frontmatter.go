package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kxue43/tech-blog/models"
)

const delimiter = "---"

// knownLayouts is the set of layouts posts may name. The renderer resolves
// the layout to a template of the same name, so an unknown value here would
// only fail later, at render time.
var knownLayouts = map[string]struct{}{
	"post": {},
}

// splitFrontMatter separates the YAML front matter block from the Markdown
// body. The block must start on the first line with "---" and end with a
// matching "---" line.
func splitFrontMatter(source string) (meta string, body string, err error) {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return "", "", models.NewBuildError(
			models.ErrCodeFrontMatter,
			"post must begin with a '---' front matter block",
			nil,
		)
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			meta = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			return meta, strings.TrimLeft(body, "\n"), nil
		}
	}

	return "", "", models.NewBuildError(
		models.ErrCodeFrontMatter,
		"front matter block is missing its closing '---'",
		nil,
	)
}

// ParseFrontMatter decodes and validates the front matter of a post source,
// returning the metadata and the remaining Markdown body.
func ParseFrontMatter(source string) (models.FrontMatter, string, error) {
	meta, body, err := splitFrontMatter(source)
	if err != nil {
		return models.FrontMatter{}, "", err
	}

	var fm models.FrontMatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return models.FrontMatter{}, "", models.NewBuildError(
			models.ErrCodeFrontMatter,
			"front matter is not valid YAML",
			err,
		)
	}

	if strings.TrimSpace(fm.Title) == "" {
		return models.FrontMatter{}, "", models.NewBuildError(
			models.ErrCodeFrontMatter,
			"front matter is missing a title",
			nil,
		)
	}
	if fm.Layout == "" {
		fm.Layout = "post"
	}
	if _, ok := knownLayouts[fm.Layout]; !ok {
		return models.FrontMatter{}, "", models.NewBuildError(
			models.ErrCodeFrontMatter,
			fmt.Sprintf("unknown layout %q", fm.Layout),
			nil,
		)
	}

	return fm, body, nil
}
