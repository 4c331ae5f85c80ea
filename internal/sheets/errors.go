package sheets

import "fmt"

// HTTPError reports a non-2xx status from a read endpoint.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sheet fetch %s: unexpected status %d", e.URL, e.Status)
}

// AccessError reports that the endpoint returned an HTML sign-in page
// instead of CSV, which means the sheet's public sharing is disabled.
// It is a distinct category from transport failure so operators get an
// actionable message instead of a generic "fetch failed".
type AccessError struct {
	URL string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("sheet %s is not publicly readable: the endpoint returned a sign-in page; "+
		"set the spreadsheet sharing to \"anyone with the link can view\"", e.URL)
}
