package postgrest

import (
	"fmt"
	"net/url"
	"strings"
)

// FormatHTTP renders a request as a wire-style HTTP message. The base URL's
// path prefix is prepended to the request path and its host becomes the Host
// header.
func FormatHTTP(req *Request, baseURL string) (string, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s HTTP/1.1\n", req.Method, base.Path+req.FullPath())
	fmt.Fprintf(&b, "Host: %s\n", base.Host)
	if req.Body != "" {
		b.WriteString("Content-Type: application/json\n")
		b.WriteByte('\n')
		b.WriteString(req.Body)
	}
	return b.String(), nil
}

// FormatCurl renders a request as a multi-line curl invocation. GET requests
// with parameters use -G with one -d per parameter; bodies are single-quoted
// with embedded single quotes escaped so the shell never truncates the JSON.
func FormatCurl(req *Request, baseURL string) (string, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return "", err
	}

	var lines []string
	switch {
	case req.Method == "GET":
		lines = append(lines, fmt.Sprintf("curl %q", base.String()+req.Path))
		if req.Params.Len() > 0 {
			lines = append(lines, "-G")
			for _, pair := range req.Params.Pairs() {
				lines = append(lines, fmt.Sprintf("-d %q", escape(pair.Key)+"="+escape(pair.Value)))
			}
		}
	default:
		lines = append(lines, fmt.Sprintf("curl %q", base.String()+req.FullPath()))
		if req.Method != "POST" {
			lines = append(lines, "-X "+req.Method)
		}
		if req.Body != "" {
			lines = append(lines, `-H "Content-Type: application/json"`)
			lines = append(lines, "-d '"+strings.ReplaceAll(req.Body, "'", `'\''`)+"'")
		}
	}
	return strings.Join(lines, " \\\n  "), nil
}

// parseBase parses and normalizes the base URL, trimming a trailing slash so
// joining with the request path never doubles it.
func parseBase(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
