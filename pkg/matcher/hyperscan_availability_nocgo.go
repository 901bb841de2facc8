//go:build !cgo || !hyperscan || wasm

package matcher

func hyperscanAvailable() bool {
	return false
}
