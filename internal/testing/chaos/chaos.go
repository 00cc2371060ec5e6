// Package chaos corrupts valid SQL so tests can check that the tokenizer,
// parser and splitter survive malformed input.
package chaos

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// Mutation is one kind of corruption.
type Mutation int

const (
	ByteFlip Mutation = iota
	ByteDelete
	ByteInsert
	Truncation
	WordDelete
	WordDuplicate
	FragmentInsert
	InvalidUTF8

	mutationCount
)

// fragments are inserted by FragmentInsert. They target the recovery and
// block-tracking paths: unbalanced parentheses, quotes and END keywords.
var fragments = []string{
	"(", ")", ",", ";", "'", `"`, "`", "$$", "$x$", "--", "/*", "*/",
	"END", "BEGIN", "CASE", "END IF", "SELECT", "FROM", "WHERE", "CREATE TABLE",
	"INSERT INTO", "VALUES", "@v", "@v:int", "?", "?-1", "1e", ".", "NOT", "GO\n", "\n/\n",
}

// Corruptor applies seeded random mutations.
type Corruptor struct {
	rng *rand.Rand
}

// NewCorruptor returns a Corruptor whose output is fixed by seed.
func NewCorruptor(seed uint64) *Corruptor {
	return &Corruptor{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Corrupt applies one random mutation to a copy of input.
func (c *Corruptor) Corrupt(input []byte) []byte {
	return c.Apply(Mutation(c.rng.IntN(int(mutationCount))), input)
}

// CorruptN applies n random mutations.
func (c *Corruptor) CorruptN(input []byte, n int) []byte {
	out := slices.Clone(input)
	for range n {
		out = c.Corrupt(out)
	}
	return out
}

// Apply applies m to a copy of input.
func (c *Corruptor) Apply(m Mutation, input []byte) []byte {
	out := slices.Clone(input)
	if len(out) == 0 && m != ByteInsert && m != FragmentInsert {
		m = FragmentInsert
	}
	switch m {
	case ByteFlip:
		i := c.rng.IntN(len(out))
		out[i] ^= byte(1 << c.rng.IntN(8))
	case ByteDelete:
		i := c.rng.IntN(len(out))
		out = slices.Delete(out, i, i+1)
	case ByteInsert:
		out = slices.Insert(out, c.rng.IntN(len(out)+1), byte(c.rng.IntN(256)))
	case Truncation:
		out = out[:c.rng.IntN(len(out))]
	case WordDelete, WordDuplicate:
		out = c.mutateWord(m, out)
	case FragmentInsert:
		frag := fragments[c.rng.IntN(len(fragments))]
		out = slices.Insert(out, c.rng.IntN(len(out)+1), []byte(" "+frag+" ")...)
	case InvalidUTF8:
		i := c.rng.IntN(len(out))
		out[i] = 0xC0 | byte(c.rng.IntN(0x20))
	}
	return out
}

func (c *Corruptor) mutateWord(m Mutation, input []byte) []byte {
	words := strings.Fields(string(input))
	if len(words) == 0 {
		return input
	}
	i := c.rng.IntN(len(words))
	if m == WordDelete {
		words = slices.Delete(words, i, i+1)
	} else {
		words = slices.Insert(words, i, words[i])
	}
	return []byte(strings.Join(words, " "))
}

// GenerateCorpus returns count corrupted variants of valid with one to five
// mutations each.
func (c *Corruptor) GenerateCorpus(valid []byte, count int) [][]byte {
	corpus := make([][]byte, count)
	for i := range corpus {
		corpus[i] = c.CorruptN(valid, c.rng.IntN(5)+1)
	}
	return corpus
}
