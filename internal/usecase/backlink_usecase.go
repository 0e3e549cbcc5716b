package usecase

import (
	"strings"

	"github.com/user/seo-audit-service/internal/backlink"
	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/pkg/errs"
	"github.com/user/seo-audit-service/pkg/utils"
)

// BacklinkService exposes the synthetic backlink estimates. Every figure it
// returns is labeled synthetic.
type BacklinkService struct {
	estimator backlink.Estimator
}

func NewBacklinkService(estimator backlink.Estimator) *BacklinkService {
	return &BacklinkService{estimator: estimator}
}

func (uc *BacklinkService) Profile(domain string) (entity.DomainBacklinks, error) {
	d, err := domainOf(domain)
	if err != nil {
		return entity.DomainBacklinks{}, err
	}
	return uc.estimator.AnalyzeDomain(d), nil
}

func (uc *BacklinkService) LinkGap(source, target string) (entity.LinkGap, error) {
	src, err := domainOf(source)
	if err != nil {
		return entity.LinkGap{}, err
	}
	dst, err := domainOf(target)
	if err != nil {
		return entity.LinkGap{}, err
	}
	return uc.estimator.CompareLinkGap(src, dst), nil
}

// domainOf accepts a bare domain or a URL and returns the lowercase host.
func domainOf(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errs.New(errs.InvalidInput, "domain missing", nil)
	}
	host := utils.Host(utils.EnsureScheme(raw))
	if host == "" {
		return "", errs.New(errs.InvalidInput, "invalid domain", nil)
	}
	return strings.ToLower(host), nil
}
