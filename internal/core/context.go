package core

// context.go
import "context"

// CtxKey — тип ключей для context.Context (чтобы избежать коллизий строк)
type CtxKey string

// CtxNonce — ключ для CSP nonce (кладётся в request.Context в middleware)
const CtxNonce CtxKey = "nonce"

// WithNonce возвращает контекст с nonce текущего запроса.
func WithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, CtxNonce, nonce)
}

// NonceFrom достаёт nonce; пустая строка — middleware не отработал.
func NonceFrom(ctx context.Context) string {
	nonce, _ := ctx.Value(CtxNonce).(string)
	return nonce
}
