package translate

import (
	"strings"
	"sync"

	"rmss/internal/model"
)

// Diagnostic reports a non-fatal translation condition. Translation never
// fails; a diagnostic accompanies the best-effort result.
type Diagnostic int

const (
	DiagNone Diagnostic = iota
	// DiagNoStartCodon: no ATG found, the full sequence was used as the
	// coding region.
	DiagNoStartCodon
	// DiagTooShort: the coding region holds fewer than 3 bases, the result
	// is empty.
	DiagTooShort
)

func (d Diagnostic) String() string {
	switch d {
	case DiagNoStartCodon:
		return "no start codon found; using full sequence"
	case DiagTooShort:
		return "sequence too short to translate"
	default:
		return ""
	}
}

const startCodon = "ATG"

// Stop marks a stop codon in translated output. Stop codons do not terminate
// translation; the whole coding region is always consumed.
const Stop = '*'

var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F',
	"TTA": 'L', "TTG": 'L', "CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I',
	"ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S', "AGT": 'S', "AGC": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y',
	"TAA": Stop, "TAG": Stop, "TGA": Stop,
	"CAT": 'H', "CAC": 'H',
	"CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N',
	"AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D',
	"GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C',
	"TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// FromStart translates a nucleotide sequence under the fixed reading-frame
// rule: the coding region starts at the first ATG (or position 0 when ATG is
// absent), the tail is truncated to a codon multiple, and every codon maps
// through the standard genetic code. Unknown codons translate to 'X'.
func FromStart(seq model.Sequence) (model.Protein, Diagnostic) {
	diag := DiagNone
	coding := string(seq)
	if start := strings.Index(coding, startCodon); start >= 0 {
		coding = coding[start:]
	} else {
		diag = DiagNoStartCodon
	}
	coding = coding[:len(coding)-len(coding)%3]
	if len(coding) < 3 {
		return "", DiagTooShort
	}

	var b strings.Builder
	b.Grow(len(coding) / 3)
	for i := 0; i+3 <= len(coding); i += 3 {
		aa, ok := codonTable[coding[i:i+3]]
		if !ok {
			aa = 'X'
		}
		b.WriteByte(aa)
	}
	return model.Protein(b.String()), diag
}

// Codec memoizes FromStart by sequence content. The cache is bounded: once
// it holds maxEntries translations it is cleared wholesale, and the
// orchestrator additionally clears it on a fixed cycle interval. A miss
// after eviction simply recomputes.
type Codec struct {
	mu         sync.Mutex
	cache      map[model.Sequence]model.Protein
	maxEntries int
}

const defaultMaxEntries = 100000

func NewCodec() *Codec {
	return &Codec{
		cache:      make(map[model.Sequence]model.Protein),
		maxEntries: defaultMaxEntries,
	}
}

// Translate returns the memoized translation of seq. The diagnostic is
// recomputed only on cache misses; cached hits report DiagNone since the
// condition was already surfaced when the sequence was first seen.
func (c *Codec) Translate(seq model.Sequence) (model.Protein, Diagnostic) {
	c.mu.Lock()
	if protein, ok := c.cache[seq]; ok {
		c.mu.Unlock()
		return protein, DiagNone
	}
	c.mu.Unlock()

	protein, diag := FromStart(seq)

	c.mu.Lock()
	if len(c.cache) >= c.maxEntries {
		c.cache = make(map[model.Sequence]model.Protein)
	}
	c.cache[seq] = protein
	c.mu.Unlock()
	return protein, diag
}

// Reset clears the memoization cache. Safe to call between cycles when no
// scoring tasks are in flight.
func (c *Codec) Reset() {
	c.mu.Lock()
	c.cache = make(map[model.Sequence]model.Protein)
	c.mu.Unlock()
}

// Len reports the current number of memoized translations.
func (c *Codec) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
