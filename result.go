package lnurlpay

// Lenient turns a strict (value, error) pair into a best-effort result: the
// value on success, nil on any error. It is meant to wrap a strict call
// directly, as in Lenient(client.FetchMetadata(ctx)).
func Lenient[T any](v *T, err error) *T {
	if err != nil {
		return nil
	}

	return v
}
