package trie

import (
	"github.com/gballet/lighthouse/crypto/hash"
)

// maxSupportedDepth is the deepest trie GenerateTrieFromItems accepts.
const maxSupportedDepth = 63

// ZeroHashes is a representation of all the zero hashes of every layer of the trie.
var ZeroHashes [][32]byte

func init() {
	ZeroHashes = make([][32]byte, maxSupportedDepth+1)
	for i := 0; i < len(ZeroHashes)-1; i++ {
		ZeroHashes[i+1] = hash.Hash(append(ZeroHashes[i][:], ZeroHashes[i][:]...))
	}
}
