package wordlist

import "embed"

// builtinFS holds the word lists shipped with the binary: YAML lists with
// metadata and plain line-delimited lists.
//
//go:embed wordlists/*.yml wordlists/*.txt
var builtinFS embed.FS
