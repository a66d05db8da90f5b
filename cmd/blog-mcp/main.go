package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// postListResponse mirrors the blog API list response.
type postListResponse struct {
	Total int `json:"total"`
	Posts []struct {
		Slug       string   `json:"slug"`
		Title      string   `json:"title"`
		Date       string   `json:"date"`
		Categories []string `json:"categories"`
		Draft      bool     `json:"draft"`
		Permalink  string   `json:"permalink"`
	} `json:"posts"`
}

// postResponse mirrors the blog API single-post response.
type postResponse struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Markdown string `json:"markdown"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// validateJobResponse mirrors the blog API validate acceptance response.
type validateJobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// importResponse mirrors the blog API import response.
type importResponse struct {
	Success bool   `json:"success"`
	Slug    string `json:"slug"`
	Path    string `json:"path"`
	Title   string `json:"title"`
	Engine  string `json:"engine"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("BLOG_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("BLOG_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "BLOG_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"tech-blog",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	listPostsTool := mcp.NewTool("list_posts",
		mcp.WithDescription("List all posts on the blog with slug, title, date and categories."),
	)
	s.AddTool(listPostsTool, handleListPosts(apiURL, apiKey))

	getPostTool := mcp.NewTool("get_post",
		mcp.WithDescription("Fetch a single post's Markdown source by slug."),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The post slug, e.g. 'driver-vs-protocol-browser-automation'"),
		),
	)
	s.AddTool(getPostTool, handleGetPost(apiURL, apiKey))

	validateSiteTool := mcp.NewTool("validate_site",
		mcp.WithDescription("Run the documentation checks against the built site: hyperlink resolution, code block well-formedness and template structure. External link probing runs as a background job that this tool polls to completion."),
		mcp.WithBoolean("external",
			mcp.Description("Also probe external hyperlinks over the network (default: false)"),
		),
	)
	s.AddTool(validateSiteTool, handleValidateSite(apiURL, apiKey))

	importPostTool := mcp.NewTool("import_post",
		mcp.WithDescription("Fetch a web page, extract its readable content and save it as a Markdown draft post. Uses a headless browser when the page blocks plain HTTP clients."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to import"),
		),
		mcp.WithString("slug",
			mcp.Description("Override the slug derived from the page title"),
		),
	)
	s.AddTool(importPostTool, handleImportPost(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiGet sends a GET request to the blog API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// apiPost sends a POST request to the blog API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			body, err := apiGet(ctx, client, apiURL, apiKey, endpoint)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}

			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}

			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}

func handleListPosts(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/posts")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list request failed: %v", err)), nil
		}

		var listResp postListResponse
		if err := json.Unmarshal(respBody, &listResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%d posts:\n\n", listResp.Total))
		for _, p := range listResp.Posts {
			flags := ""
			if p.Draft {
				flags = " [draft]"
			}
			sb.WriteString(fmt.Sprintf("- %s  %s (%s)%s\n", p.Date, p.Title, p.Slug, flags))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleGetPost(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slug, err := request.RequireString("slug")
		if err != nil {
			return mcp.NewToolResultError("slug is required"), nil
		}

		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/posts/"+slug)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get request failed: %v", err)), nil
		}

		var post postResponse
		if err := json.Unmarshal(respBody, &post); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if post.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", post.Error.Code, post.Error.Message)), nil
		}

		result := fmt.Sprintf("Title: %s\nDate: %s\n\n%s", post.Title, post.Date, post.Markdown)
		return mcp.NewToolResultText(result), nil
	}
}

func handleValidateSite(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		external := request.GetBool("external", false)

		payload := map[string]interface{}{"external": external}
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/validate", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validate request failed: %v", err)), nil
		}

		// Internal-only runs answer with the report directly. External runs
		// answer with a job id to poll.
		if external {
			var jobResp validateJobResponse
			if err := json.Unmarshal(respBody, &jobResp); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to parse job response: %v", err)), nil
			}
			if jobResp.ID == "" {
				return mcp.NewToolResultError("validation job creation failed"), nil
			}

			respBody, err = pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/validate/"+jobResp.ID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("polling validation job failed: %v", err)), nil
			}
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
			pretty.Write(respBody)
		}
		return mcp.NewToolResultText(pretty.String()), nil
	}
}

func handleImportPost(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]interface{}{"url": url}
		if slug := request.GetString("slug", ""); slug != "" {
			payload["slug"] = slug
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/import", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("import request failed: %v", err)), nil
		}

		var impResp importResponse
		if err := json.Unmarshal(respBody, &impResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !impResp.Success {
			errMsg := "import failed"
			if impResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", impResp.Error.Code, impResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		result := fmt.Sprintf("Imported %q as draft %s\nFile: %s\nFetched via: %s",
			impResp.Title, impResp.Slug, impResp.Path, impResp.Engine)
		return mcp.NewToolResultText(result), nil
	}
}
