package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer records X-Ray subsegments around analytics work. On Lambda the
// parent segment comes from the runtime, so handlers only ever open
// subsegments; outside Lambda the calls degrade to no-ops when no
// segment is present in the context.
type Tracer struct {
	serviceName string
}

func NewTracer(serviceName string) *Tracer {
	return &Tracer{serviceName: serviceName}
}

// TraceFunction runs fn inside a subsegment named after the traced
// operation, annotated with the service name so traces from the API and
// Lambda entries can be filtered together.
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	return xray.Capture(ctx, name, func(ctx context.Context) error {
		if seg := xray.GetSegment(ctx); seg != nil {
			seg.AddAnnotation("service", t.serviceName)
		}
		return fn(ctx)
	})
}

// AddAnnotation attaches an indexed key/value to the current segment.
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}

// RecordError marks the current segment as failed.
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddError(err)
	}
}
