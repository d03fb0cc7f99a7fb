package watermark

import "fmt"

// DocumentReadError reports a source document that could not be opened,
// parsed, or that contains no pages.
type DocumentReadError struct {
	Path string
	Err  error
}

func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("read document %s: %v", e.Path, e.Err)
}

func (e *DocumentReadError) Unwrap() error { return e.Err }

// InvalidWatermarkError reports a spec that failed validation or a watermark
// asset that could not be loaded. It is always raised before any page work.
type InvalidWatermarkError struct {
	Reason string
	Err    error
}

func (e *InvalidWatermarkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid watermark: %s: %v", e.Reason, e.Err)
	}
	return "invalid watermark: " + e.Reason
}

func (e *InvalidWatermarkError) Unwrap() error { return e.Err }

// PageRenderError reports a failure while generating or compositing the
// overlay for one page. Page is 1-based.
type PageRenderError struct {
	Page int
	Err  error
}

func (e *PageRenderError) Error() string {
	return fmt.Sprintf("render overlay for page %d: %v", e.Page, e.Err)
}

func (e *PageRenderError) Unwrap() error { return e.Err }

// ResourceError reports a scratch-file failure while finalizing output.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
