// Package detect classifies statement text by broker before any extractor runs.
//
// Every broker profile scores the sample with additive signed rules: a leading line
// that starts with a known header adds FingerprintWeight, each brand or vocabulary
// keyword found anywhere adds KeywordWeight, each known column name in the leading
// lines adds ColumnWeight, and contradicting hints subtract. The best score wins when
// it reaches MinConfidence; ties go to the broker registered first.
package detect

import (
	"strings"

	"github.com/samber/lo"

	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

const (
	FingerprintWeight = 5
	KeywordWeight     = 3
	ColumnWeight      = 2
	MinConfidence     = 5

	sampleLines = 40
)

// Score is one broker's total with the rules that produced it.
type Score struct {
	Broker domain.BrokerID `json:"broker"`
	Score  int             `json:"score"`
	Hits   []string        `json:"hits,omitempty"`
}

// Detect returns the broker whose profile scores best, or the generic id when no
// profile reaches MinConfidence.
func Detect(content string) domain.BrokerID {
	return Best(Scores(content))
}

// Best picks the top score at or above MinConfidence, or the generic id. Scores are
// walked in order with a strict comparison, so the first of equal scores wins.
func Best(scores []Score) domain.BrokerID {
	id := domain.BrokerGeneric
	top := MinConfidence - 1
	for _, s := range scores {
		if s.Score > top {
			id, top = s.Broker, s.Score
		}
	}
	return id
}

// Scores evaluates every broker profile in registration order.
func Scores(content string) []Score {
	s := newSample(content)
	return lo.FilterMap(domain.SpecificBrokers(), func(info domain.BrokerInfo, _ int) (Score, bool) {
		p, ok := profiles[info.ID]
		if !ok {
			return Score{}, false
		}
		sc := p.score(s)
		sc.Broker = info.ID
		return sc, true
	})
}

// sample is the normalized view of a statement the rules look at.
type sample struct {
	text      string          // lowercased full text
	lines     []string        // leading lines, lowercased, quotes dropped, delimiters folded to ','
	cells     map[string]bool // normalized cells of the leading lines
	delimiter rune
}

func newSample(content string) sample {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	head := strings.Split(content, "\n")
	if len(head) > sampleLines {
		head = head[:sampleLines]
	}
	headText := strings.Join(head, "\n")

	folder := strings.NewReplacer(`"`, "", ";", ",", "\t", ",")
	lines := lo.FilterMap(head, func(l string, _ int) (string, bool) {
		l = strings.TrimSpace(folder.Replace(strings.ToLower(l)))
		return l, l != ""
	})

	delim := tabular.SniffDelimiter(headText)
	cells := map[string]bool{}
	for _, row := range tabular.Read(headText, delim).Rows {
		for _, c := range row {
			if h := tabular.NormalizeHeader(c); h != "" {
				cells[h] = true
			}
		}
	}

	return sample{
		text:      strings.ToLower(content),
		lines:     lines,
		cells:     cells,
		delimiter: delim,
	}
}

// penalty is a contradicting hint.
type penalty struct {
	name    string
	weight  int
	applies func(sample) bool
}

type profile struct {
	fingerprints []string
	keywords     []string
	columns      []string
	penalties    []penalty
}

func (p profile) score(s sample) Score {
	var total int
	var hits []string

	if fp, ok := lo.Find(p.fingerprints, func(fp string) bool {
		return lo.SomeBy(s.lines, func(l string) bool { return strings.HasPrefix(l, fp) })
	}); ok {
		total += FingerprintWeight
		hits = append(hits, "fingerprint "+fp)
	}
	for _, kw := range p.keywords {
		if strings.Contains(s.text, kw) {
			total += KeywordWeight
			hits = append(hits, "keyword "+kw)
		}
	}
	for _, col := range p.columns {
		if s.cells[col] {
			total += ColumnWeight
			hits = append(hits, "column "+col)
		}
	}
	for _, pen := range p.penalties {
		if pen.applies(s) {
			total += pen.weight
			hits = append(hits, pen.name)
		}
	}

	return Score{Score: total, Hits: hits}
}
