// Package agentrpc implements the RPC client used to query monitoring
// agents. Calls are JSON envelopes POSTed over HTTP: the response carries
// either a result payload or a structured fault with a numeric code.
package agentrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds connect and request time for every call.
const DefaultTimeout = 3 * time.Second

// BuildURI is the only place credentials enter the transport layer.
func BuildURI(username, secret, ip string, port int) string {
	if secret != "" {
		return fmt.Sprintf("http://%s:%s@%s:%d", username, secret, ip, port)
	}
	return fmt.Sprintf("http://%s:%d", ip, port)
}

// Client issues RPC calls against one agent endpoint.
type Client struct {
	endpoint string
	username string
	secret   string
	http     *http.Client
}

// NewClient parses an agent URI (as produced by BuildURI) and returns a
// client with the given request timeout.
func NewClient(uri string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse agent URI: %w", err)
	}
	if u.Scheme != "http" || u.Host == "" {
		return nil, fmt.Errorf("invalid agent URI %q", u.Redacted())
	}
	c := &Client{http: &http.Client{Timeout: timeout}}
	if u.User != nil {
		c.username = u.User.Username()
		c.secret, _ = u.User.Password()
		u.User = nil
	}
	c.endpoint = u.String() + "/rpc"
	return c, nil
}

type request struct {
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Fault  *Fault          `json:"fault"`
}

// Call invokes one remote method. Transport errors come back unchanged;
// protocol errors come back as *Fault.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	body, err := json.Marshal(request{Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &Fault{Code: CodeAuthRejected, Message: "authentication rejected"}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &Fault{Code: resp.StatusCode, Message: resp.Status}
		}
		return nil, fmt.Errorf("decode agent response: %w", err)
	}
	if env.Fault != nil {
		return nil, env.Fault
	}
	return env.Result, nil
}

// PluginValues fetches the JSON payload of the named plugin.
func (c *Client) PluginValues(ctx context.Context, plugin string) (json.RawMessage, error) {
	return c.Call(ctx, "getPlugin", plugin)
}

// PluginView fetches the rendering hints of the named plugin.
func (c *Client) PluginView(ctx context.Context, plugin string) (json.RawMessage, error) {
	return c.Call(ctx, "getPluginView", plugin)
}

// Version fetches the agent's protocol version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	raw, err := c.Call(ctx, "version")
	if err != nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("decode version: %w", err)
	}
	return v, nil
}
