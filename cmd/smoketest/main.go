package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	flag "github.com/spf13/pflag"
)

type check struct {
	name string
	run  func(*client) error
}

type client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	token    string
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Token   string `json:"token"`
	User    struct {
		Username  string `json:"username"`
		Role      string `json:"role"`
		RoleLevel int    `json:"roleLevel"`
	} `json:"user"`
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "API base URL")
	username := flag.String("username", "admin", "login username")
	password := flag.String("password", "admin123", "login password")
	role := flag.String("expect-role", "super_admin", "role the login must yield")
	level := flag.Int("expect-level", 100, "role level the login must yield")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	c := &client{
		baseURL:  strings.TrimRight(*baseURL, "/"),
		username: *username,
		password: *password,
		http:     &http.Client{Timeout: *timeout},
	}

	checks := []check{
		{"preflight OPTIONS /auth/login", preflight},
		{"login", func(c *client) error { return login(c, *role, *level) }},
		{"verify with issued token", verifyIssued},
		{"verify with bad token", func(c *client) error {
			return expectError(c, "Bearer not-a-real-token", http.StatusUnauthorized, "Invalid token")
		}},
		{"verify without token", func(c *client) error {
			return expectError(c, "", http.StatusUnauthorized, "No token provided")
		}},
	}

	for _, chk := range checks {
		if err := chk.run(c); err != nil {
			fmt.Printf("FAIL %s: %v\n", chk.name, err)
			os.Exit(1)
		}
		fmt.Printf("ok   %s\n", chk.name)
	}
}

func (c *client) do(method, path, authHeader string, body interface{}, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}

func preflight(c *client) error {
	status, body, err := c.do(http.MethodOptions, "/auth/login", "", nil, map[string]string{
		"Origin":                        "https://smoke.invalid",
		"Access-Control-Request-Method": "POST",
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("status %d, want 200", status)
	}
	if len(body) != 0 {
		return fmt.Errorf("body %q, want empty", body)
	}
	return nil
}

func login(c *client, wantRole string, wantLevel int) error {
	status, raw, err := c.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": c.username,
		"password": c.password,
	}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("status %d, body %s", status, raw)
	}

	var resp envelope
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if !resp.Success || resp.Token == "" {
		return fmt.Errorf("no token in %s", raw)
	}

	// The payload is read unverified; the server is the only holder of the secret
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.Token, claims); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if got, _ := claims["role"].(string); got != wantRole {
		return fmt.Errorf("token role %q, want %q", got, wantRole)
	}
	if got, _ := claims["role_level"].(float64); int(got) != wantLevel {
		return fmt.Errorf("token role_level %v, want %d", claims["role_level"], wantLevel)
	}

	c.token = resp.Token
	return nil
}

func verifyIssued(c *client) error {
	status, raw, err := c.do(http.MethodGet, "/auth/verify", "Bearer "+c.token, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("status %d, body %s", status, raw)
	}

	var resp envelope
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if !resp.Success || !strings.EqualFold(resp.User.Username, c.username) {
		return fmt.Errorf("unexpected body %s", raw)
	}
	return nil
}

func expectError(c *client, authHeader string, wantStatus int, wantMsg string) error {
	status, raw, err := c.do(http.MethodGet, "/auth/verify", authHeader, nil, nil)
	if err != nil {
		return err
	}
	if status != wantStatus {
		return fmt.Errorf("status %d, want %d", status, wantStatus)
	}

	var resp envelope
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if resp.Success || resp.Error != wantMsg {
		return fmt.Errorf("body %s, want error %q", raw, wantMsg)
	}
	return nil
}
