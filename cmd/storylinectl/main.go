package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/storyline-io/storyline/internal/config"
	"github.com/storyline-io/storyline/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "health":
		cmdHealth()
	case "projects":
		cmdProjects()
	case "issues":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: storylinectl issues <project-key>")
			os.Exit(1)
		}
		cmdIssues(os.Args[2])
	case "rewrite":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: storylinectl rewrite <project-key>")
			os.Exit(1)
		}
		cmdRewrite(os.Args[2])
	case "update":
		cmdUpdate()
	case "config":
		if len(os.Args) < 4 || os.Args[2] != "validate" {
			fmt.Fprintln(os.Stderr, "usage: storylinectl config validate <path>")
			os.Exit(1)
		}
		cmdConfigValidate(os.Args[3])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`storylinectl - operate a storylinerd daemon

Usage:
  storylinectl health                   Check daemon health
  storylinectl projects                 List Jira projects
  storylinectl issues <project-key>     List issues for a project
  storylinectl rewrite <project-key>    Rewrite a project's issues and print them
  storylinectl update                   Push rewritten tickets (JSON array on stdin)
  storylinectl config validate <path>   Validate a config file

Environment:
  STORYLINE_API_URL   Daemon base URL (default http://127.0.0.1:8000)
  STORYLINE_API_KEY   Bearer key, if the daemon requires one`)
}

func cmdHealth() {
	var body map[string]string
	if err := apiRequest(http.MethodGet, "/api/health", nil, &body); err != nil {
		fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("daemon is %s\n", body["status"])
}

func cmdProjects() {
	var projects []story.Project
	if err := apiRequest(http.MethodGet, "/api/projects", nil, &projects); err != nil {
		fmt.Fprintf(os.Stderr, "failed to list projects: %v\n", err)
		os.Exit(1)
	}
	for _, p := range projects {
		fmt.Printf("%-10s  %s\n", p.Key, p.Name)
	}
}

func cmdIssues(projectKey string) {
	var tickets []story.Ticket
	if err := apiRequest(http.MethodGet, "/api/projects/"+projectKey+"/issues", nil, &tickets); err != nil {
		fmt.Fprintf(os.Stderr, "failed to list issues: %v\n", err)
		os.Exit(1)
	}
	for _, t := range tickets {
		fmt.Printf("%-10s  %s\n", t.Key, t.Summary)
	}
}

func cmdRewrite(projectKey string) {
	var tickets []story.Ticket
	if err := apiRequest(http.MethodGet, "/api/projects/"+projectKey+"/issues", nil, &tickets); err != nil {
		fmt.Fprintf(os.Stderr, "failed to list issues: %v\n", err)
		os.Exit(1)
	}
	if len(tickets) == 0 {
		fmt.Fprintln(os.Stderr, "no issues to rewrite")
		os.Exit(1)
	}

	var rewritten []story.RewrittenTicket
	if err := apiRequest(http.MethodPost, "/api/rewrite-tickets", tickets, &rewritten); err != nil {
		fmt.Fprintf(os.Stderr, "rewrite failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(rewritten)
}

func cmdUpdate() {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		os.Exit(1)
	}
	var tickets []story.RewrittenTicket
	if err := json.Unmarshal(data, &tickets); err != nil {
		fmt.Fprintf(os.Stderr, "stdin is not a JSON array of rewritten tickets: %v\n", err)
		os.Exit(1)
	}

	var result story.UpdateResult
	if err := apiRequest(http.MethodPut, "/api/update-tickets", map[string]any{"tickets": tickets}, &result); err != nil {
		fmt.Fprintf(os.Stderr, "update failed: %v\n", err)
		os.Exit(1)
	}

	for _, key := range result.UpdatedTickets {
		fmt.Printf("updated  %s\n", key)
	}
	for _, f := range result.FailedTickets {
		fmt.Printf("failed   %s: %s\n", f.Key, f.Error)
	}
	if !result.Success {
		os.Exit(1)
	}
}

func cmdConfigValidate(path string) {
	if _, err := config.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("config is valid")
}

// apiRequest performs one JSON round trip against the daemon.
func apiRequest(method, path string, in, out any) error {
	baseURL := os.Getenv("STORYLINE_API_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key := os.Getenv("STORYLINE_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
