package appversions

import (
	"errors"
	"fmt"
	"sort"

	versions "github.com/hashicorp/go-version"
)

var (
	ErrInvalidPlatform = errors.New("unknown platform")
	ErrInvalidVersion  = errors.New("version is not a valid semver")
)

type Service struct {
	repo *Repo
}

func NewService(r *Repo) *Service {
	return &Service{
		repo: r,
	}
}

func (s *Service) Publish(info Info) error {
	switch info.Platform {
	case PlatformWeb, PlatformIos, PlatformAndroid:
	default:
		return ErrInvalidPlatform
	}

	if _, err := versions.NewVersion(info.Version); err != nil {
		return ErrInvalidVersion
	}

	return s.repo.Create(info)
}

func (s *Service) GetListByPlatform(pl Platform) ([]Info, error) {
	list, err := s.repo.GetByFilters([]Filter{
		PlatformFilter{
			Platform: pl,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get list by filters: %w", err)
	}

	// sort by semver desc
	sort.Slice(list, func(i, j int) bool {
		from, _ := versions.NewVersion(list[i].Version)
		to, _ := versions.NewVersion(list[j].Version)

		return from.GreaterThanOrEqual(to)
	})

	return list, nil
}

// IsOutdated reports whether the given client version trails the newest
// published one. Unknown platforms and unparsable versions count as current.
func (s *Service) IsOutdated(pl Platform, current string) (bool, error) {
	list, err := s.GetListByPlatform(pl)
	if err != nil {
		return false, err
	}
	if len(list) == 0 {
		return false, nil
	}

	latest, err := versions.NewVersion(list[0].Version)
	if err != nil {
		return false, nil
	}

	own, err := versions.NewVersion(current)
	if err != nil {
		return false, nil
	}

	return own.LessThan(latest), nil
}
