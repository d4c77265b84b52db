package assess

import "context"

// ValidatingTransport rejects replies that do not match their endpoint's
// reply schema with *ErrInvalidResponse. The reply is returned alongside the
// error so decorators above it can still see the status code.
type ValidatingTransport struct {
	inner Transport
}

// WithValidation wraps t with reply schema validation.
func WithValidation(t Transport) Transport {
	return &ValidatingTransport{inner: t}
}

func (v *ValidatingTransport) Send(ctx context.Context, call Call) (*Reply, error) {
	reply, err := v.inner.Send(ctx, call)
	if err != nil {
		return reply, err
	}
	if err := validateReply(call.Endpoint, reply.Content); err != nil {
		return reply, err
	}
	return reply, nil
}

func (v *ValidatingTransport) Name() string {
	return v.inner.Name()
}
