package whttp

import (
	"context"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

type Header struct {
	Name  string
	Value string
}

type Request struct {
	URL     string
	Method  string
	Headers []Header
}

type Response struct {
	StatusCode     int
	ResponseLength int
	HTTPTitle      string
	BodyString     string
}

// NewClient returns a retrying HTTP client with its internal logging
// silenced; retries cover the flaky-portal case without spamming output.
func NewClient(retryMax int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = retryMax
	return client
}

// Send performs the request and returns the body, status and HTML title.
func Send(ctx context.Context, req *Request, client *retryablehttp.Client) (*Response, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0")
	httpReq.Header.Set("Cache-Control", "no-transform")
	httpReq.Header.Set("Accept-Language", "en")

	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	res := &Response{
		StatusCode: resp.StatusCode,
		BodyString: string(bodyBytes),
	}

	if title, ok := getHTMLTitle(res.BodyString); ok {
		res.HTTPTitle = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
	}

	res.ResponseLength = utf8.RuneCountInString(res.BodyString)
	return res, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(requestBody string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(requestBody))
	if err != nil {
		return "", false
	}

	return traverse(doc)
}
