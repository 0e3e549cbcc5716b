// Package backlink produces synthetic backlink profiles. No figure here is a
// measurement: every number is drawn from a PRNG seeded by the domain name so
// repeated calls agree, and every result is labeled Synthetic.
package backlink

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/user/seo-audit-service/internal/entity"
)

const (
	topReferrerLimit = 10
	gapReferrerLimit = 50
	gapListLimit     = 50
)

var anchorTerms = []string{"best", "review", "guide", "tools", "tips", "tutorial", "compare", "top", "cheap", "buy"}

// Estimator builds backlink profiles and link-gap comparisons for domains.
type Estimator interface {
	AnalyzeDomain(domain string) entity.DomainBacklinks
	CompareLinkGap(source, target string) entity.LinkGap
}

// SyntheticEstimator derives deterministic fake figures from domain hashes.
type SyntheticEstimator struct {
	now func() time.Time
}

func NewSyntheticEstimator() *SyntheticEstimator {
	return &SyntheticEstimator{now: time.Now}
}

func (e *SyntheticEstimator) AnalyzeDomain(domain string) entity.DomainBacklinks {
	domain = normalizeDomain(domain)
	return entity.DomainBacklinks{
		Domain:           domain,
		Synthetic:        true,
		TotalBacklinks:   totalBacklinks(domain),
		ReferringDomains: referringDomains(domain),
		TopReferrers:     topReferrers(domain, topReferrerLimit),
		AnchorTexts:      anchorTexts(domain),
		Growth:           growth(domain),
		ToxicScore:       toxicity(domain),
		LastAnalyzed:     e.now().UTC(),
	}
}

func (e *SyntheticEstimator) CompareLinkGap(source, target string) entity.LinkGap {
	source, target = normalizeDomain(source), normalizeDomain(target)
	return CompareReferrers(source, target,
		referrerNames(topReferrers(source, gapReferrerLimit)),
		referrerNames(topReferrers(target, gapReferrerLimit)),
	)
}

// CompareReferrers computes the set differences and intersection of two
// referrer lists, keeping first-seen order and capping each list at 50.
func CompareReferrers(source, target string, sourceRefs, targetRefs []string) entity.LinkGap {
	inSource := toSet(sourceRefs)
	inTarget := toSet(targetRefs)

	gap := entity.LinkGap{
		Source:           source,
		Target:           target,
		Synthetic:        true,
		MissingForSource: []string{},
		MissingForTarget: []string{},
		Overlap:          []string{},
	}

	seen := make(map[string]struct{})
	for _, ref := range targetRefs {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		if _, ok := inSource[ref]; !ok && len(gap.MissingForSource) < gapListLimit {
			gap.MissingForSource = append(gap.MissingForSource, ref)
		}
	}

	seen = make(map[string]struct{})
	for _, ref := range sourceRefs {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		if _, ok := inTarget[ref]; ok {
			if len(gap.Overlap) < gapListLimit {
				gap.Overlap = append(gap.Overlap, ref)
			}
		} else if len(gap.MissingForTarget) < gapListLimit {
			gap.MissingForTarget = append(gap.MissingForTarget, ref)
		}
	}
	return gap
}

// seeded returns a PRNG whose seed is the md5 of key reduced mod 2^32.
func seeded(key string) *rand.Rand {
	sum := md5.Sum([]byte(key))
	seed := uint64(binary.BigEndian.Uint32(sum[12:]))
	return rand.New(rand.NewPCG(seed, seed))
}

// randInt returns an integer in [lo, hi].
func randInt(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

func isApex(domain string) bool {
	return strings.Count(domain, ".") == 1
}

func totalBacklinks(domain string) int {
	r := seeded(domain)
	base := randInt(r, 50, 2000) * (len(domain)%10 + 1)
	if isApex(domain) {
		base *= 3
	}
	return base
}

func referringDomains(domain string) int {
	r := seeded(domain + "refs")
	refs := randInt(r, 20, 1200)
	if isApex(domain) {
		refs = int(float64(refs) * 1.2)
	}
	return refs
}

func topReferrers(domain string, limit int) []entity.Referrer {
	r := seeded(domain + "top")
	out := make([]entity.Referrer, 0, limit)
	for i := 0; i < limit; i++ {
		links := randInt(r, 10, 5000)
		ref := fmt.Sprintf("blog%d.%s", i, domain)
		if i%3 != 0 {
			ref = fmt.Sprintf("ref%d.%s", i, domain)
		}
		out = append(out, entity.Referrer{Referrer: ref, EstimatedLinks: links, Domain: ref})
	}
	return out
}

func anchorTexts(domain string) []entity.AnchorText {
	r := seeded(domain + "anchors")
	out := make([]entity.AnchorText, 0, len(anchorTerms))
	for _, term := range anchorTerms {
		out = append(out, entity.AnchorText{Text: domain + " " + term, Count: randInt(r, 10, 500)})
	}
	return out
}

func growth(domain string) entity.BacklinkGrowth {
	r := seeded(domain + "growth")
	months := make([]int, 12)
	sum := 0
	for i := range months {
		months[i] = int(uniform(r, -5, 25))
		sum += months[i]
	}
	return entity.BacklinkGrowth{Months: months, TrendScore: floorDiv(sum, 12)}
}

func toxicity(domain string) float64 {
	r := seeded(domain + "toxic")
	return math.Round(uniform(r, 0, 100)*100) / 100
}

func referrerNames(refs []entity.Referrer) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Referrer)
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	if i := strings.IndexAny(domain, "/?#"); i >= 0 {
		domain = domain[:i]
	}
	return domain
}
