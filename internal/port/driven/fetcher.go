package driven

import "context"

// HeadResult carries the metadata of a header-only fetch.
type HeadResult struct {
	StatusCode  int
	ContentType string
}

// Fetcher abstracts outbound HTTP for playlist loading, manifest sniffing
// and liveness probing.
type Fetcher interface {
	// Fetch retrieves the full body of a URL.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Head performs a header-only request.
	Head(ctx context.Context, url string) (HeadResult, error)

	// Check performs a lightweight existence check: a GET whose body is
	// discarded immediately. Returns the status code.
	Check(ctx context.Context, url string) (int, error)
}
