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

// checkRequest mirrors the Sessionprobe API request model.
type checkRequest struct {
	Content    string `json:"content"`
	FormatHint string `json:"format_hint,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// checkResponse mirrors the Sessionprobe API response model.
type checkResponse struct {
	Success bool     `json:"success"`
	Status  string   `json:"status"`
	Report  []string `json:"report"`
	Reason  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"reason"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// healthResponse mirrors the Sessionprobe health API response.
type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

func main() {
	apiURL := os.Getenv("PROBE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PROBE_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PROBE_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"sessionprobe",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	checkTool := mcp.NewTool("check_credential",
		mcp.WithDescription("Validate a session-cookie credential blob against the target site and report account details. Accepts JSON cookie arrays, Netscape cookie files, pipe- or semicolon-delimited pairs, or freeform text."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The raw credential blob to check"),
		),
		mcp.WithString("format_hint",
			mcp.Description("Declared format of the blob, typically the source file extension ('json', 'txt')"),
		),
		mcp.WithString("mode",
			mcp.Description("Validation path: 'plain' (default, fast HTTP check with account field extraction) or 'browser' (headless-browser verification with service code and profile enumeration)"),
			mcp.Enum("plain", "browser"),
		),
	)
	s.AddTool(checkTool, handleCheckCredential(apiURL, apiKey))

	healthTool := mcp.NewTool("probe_health",
		mcp.WithDescription("Report the Sessionprobe service health and browser session utilisation."),
	)
	s.AddTool(healthTool, handleHealth(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleCheckCredential(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		reqBody := checkRequest{
			Content:    content,
			FormatHint: request.GetString("format_hint", ""),
			Mode:       request.GetString("mode", ""),
		}

		body, err := json.Marshal(reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/check", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var checkResp checkResponse
		if err := json.Unmarshal(respBody, &checkResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !checkResp.Success {
			errMsg := "check failed"
			if checkResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", checkResp.Error.Code, checkResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		result := "Status: " + checkResp.Status
		if checkResp.Reason != nil {
			result += fmt.Sprintf("\nReason: [%s] %s", checkResp.Reason.Code, checkResp.Reason.Message)
		}
		if len(checkResp.Report) > 0 {
			result += "\n\n" + strings.Join(checkResp.Report, "\n")
		}
		return mcp.NewToolResultText(result), nil
	}
}

func handleHealth(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 10 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/health", nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var health healthResponse
		if err := json.Unmarshal(respBody, &health); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Status: %s\nUptime: %s\nVersion: %s",
			health.Status, health.Uptime, health.Version)), nil
	}
}
