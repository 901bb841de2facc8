//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("WordscanNewScanner", js.FuncOf(newScanner))
	js.Global().Set("WordscanCheck", js.FuncOf(check))
	js.Global().Set("WordscanScan", js.FuncOf(scan))
	js.Global().Set("WordscanScanBatch", js.FuncOf(scanBatch))
	js.Global().Set("WordscanMask", js.FuncOf(mask))
	js.Global().Set("WordscanCloseScanner", js.FuncOf(closeScanner))
	js.Global().Set("WordscanGetBuiltinWords", js.FuncOf(getBuiltinWords))

	// Keep WASM running
	<-make(chan struct{})
}
