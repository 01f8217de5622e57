// Command console_smoke signs in against a running gateway, walks every
// screen in the caller's dashboard composition and reports per-screen status
// and latency. Exit code 1 when any screen fails.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type loginData struct {
	SessionID string `json:"sessionId"`
	Dashboard struct {
		Groups []struct {
			Title  string `json:"title"`
			Panels []struct {
				Kind     string `json:"kind"`
				Registry string `json:"registry"`
			} `json:"panels"`
		} `json:"groups"`
	} `json:"dashboard"`
}

type result struct {
	Registry string
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		base     string
		username string
		password string
		timeout  time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "gateway base URL")
	flag.StringVar(&username, "username", "", "console username")
	flag.StringVar(&password, "password", "", "console password")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if username == "" || password == "" {
		log.Fatal("both -username and -password are required")
	}

	client := &http.Client{Timeout: timeout}
	base = strings.TrimRight(base, "/")

	login, err := signIn(client, base, username, password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	defer signOut(client, base, login.SessionID)

	var (
		results []result
		failed  int
	)
	for _, group := range login.Dashboard.Groups {
		for _, panel := range group.Panels {
			if panel.Kind != "screen" || panel.Registry == "" {
				continue
			}
			res := enterScreen(client, base, login.SessionID, panel.Registry)
			if res.Err != nil || res.Status != http.StatusOK {
				failed++
			}
			results = append(results, res)
		}
	}

	printReport(results)
	fmt.Printf("Screens checked: %d, failed: %d\n", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func signIn(client *http.Client, base, username, password string) (*loginData, error) {
	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := client.Post(base+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}
	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode login data: %w", err)
	}
	if data.SessionID == "" {
		return nil, fmt.Errorf("login response carried no session id")
	}
	return &data, nil
}

func signOut(client *http.Client, base, sessionID string) {
	req, err := http.NewRequest(http.MethodPost, base+"/api/v1/auth/logout", nil)
	if err != nil {
		return
	}
	req.Header.Set("X-Session-ID", sessionID)
	if resp, err := client.Do(req); err == nil {
		resp.Body.Close()
	}
}

func enterScreen(client *http.Client, base, sessionID, registry string) result {
	res := result{Registry: registry}

	req, err := http.NewRequest(http.MethodGet, base+"/api/v1/screens/"+registry, nil)
	if err != nil {
		res.Err = err
		return res
	}
	req.Header.Set("X-Session-ID", sessionID)

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Err = fmt.Errorf("read body: %w", err)
		return res
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		res.Err = fmt.Errorf("decode envelope: %w", err)
		return res
	}
	if env.Error != nil {
		res.Err = fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
	}

	// Leave the screen so the walk does not pile up controller state.
	leaveReq, err := http.NewRequest(http.MethodDelete, base+"/api/v1/screens/"+registry, nil)
	if err == nil {
		leaveReq.Header.Set("X-Session-ID", sessionID)
		if leaveResp, err := client.Do(leaveReq); err == nil {
			leaveResp.Body.Close()
		}
	}

	return res
}

func printReport(results []result) {
	fmt.Println("Console Smoke Report")
	fmt.Println("====================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil || res.Status != http.StatusOK {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s\n", status, res.Registry)
		fmt.Printf("  Status: %d (%s)\n", res.Status, res.Duration)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
		}
	}
}
