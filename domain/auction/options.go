package auction

import (
	"time"

	"github.com/x-xyz/goauction/domain"
)

type FindAllOptions struct {
	Status          *Status
	Category        *string
	Seller          *string
	Keyword         *string
	StartTimeBefore *time.Time
	EndTimeBefore   *time.Time
	EndTimeAfter    *time.Time
	SortBy          *string
	SortDir         *domain.SortDir
	Offset          *int
	Limit           *int
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		if !status.IsValid() {
			return domain.ErrBadParamInput
		}
		o.Status = &status
		return nil
	}
}

func WithCategory(category string) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		o.Category = &category
		return nil
	}
}

func WithSeller(seller string) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		o.Seller = &seller
		return nil
	}
}

// WithKeyword matches title or description, case-insensitive
func WithKeyword(keyword string) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		o.Keyword = &keyword
		return nil
	}
}

// WithStartTimeBefore matches start time <= t
func WithStartTimeBefore(t time.Time) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		o.StartTimeBefore = &t
		return nil
	}
}

// WithEndTimeBefore matches end time <= t
func WithEndTimeBefore(t time.Time) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		o.EndTimeBefore = &t
		return nil
	}
}

// WithEndTimeAfter matches end time > t
func WithEndTimeAfter(t time.Time) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		o.EndTimeAfter = &t
		return nil
	}
}

// WithSort accepts "endTime", "startTime", "createdAt" or "currentPrice"
func WithSort(sortBy string, dir domain.SortDir) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		switch sortBy {
		case "endTime", "startTime", "createdAt", "currentPrice":
		default:
			return domain.ErrBadParamInput
		}
		o.SortBy = &sortBy
		o.SortDir = &dir
		return nil
	}
}

func WithPagination(offset, limit int) FindAllOptionsFunc {
	return func(o *FindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		o.Offset = &offset
		o.Limit = &limit
		return nil
	}
}

type BidFindAllOptions struct {
	AuctionId *string
	BidderId  *string
	Status    *BidStatus
	Offset    *int
	Limit     *int
}

type BidFindAllOptionsFunc func(*BidFindAllOptions) error

func GetBidFindAllOptions(opts ...BidFindAllOptionsFunc) (BidFindAllOptions, error) {
	res := BidFindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func BidWithAuctionId(id string) BidFindAllOptionsFunc {
	return func(o *BidFindAllOptions) error {
		o.AuctionId = &id
		return nil
	}
}

func BidWithBidder(bidderId string) BidFindAllOptionsFunc {
	return func(o *BidFindAllOptions) error {
		o.BidderId = &bidderId
		return nil
	}
}

func BidWithStatus(status BidStatus) BidFindAllOptionsFunc {
	return func(o *BidFindAllOptions) error {
		o.Status = &status
		return nil
	}
}

func BidWithPagination(offset, limit int) BidFindAllOptionsFunc {
	return func(o *BidFindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		o.Offset = &offset
		o.Limit = &limit
		return nil
	}
}
