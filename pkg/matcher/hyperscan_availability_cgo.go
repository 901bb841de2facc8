//go:build !wasm && cgo && hyperscan

package matcher

func hyperscanAvailable() bool {
	return true
}
