package blogservice

import (
	"github.com/sushihentaime/haerin/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, MinTitleLength, MaxTitleLength), "title", "must be between 5 and 200 characters long")
}

func validateContent(v *common.Validator, content string) {
	v.Check(textLength(content) >= MinContentLength, "content", "must be at least 20 characters")
}

func validateStatus(v *common.Validator, status Status) {
	v.Check(common.PermittedValue(status, StatusDraft, StatusPublished), "status", "must be either draft or published")
}

func validateID(v *common.Validator, id int64, name string) {
	v.Check(id > 0, name, "must be greater than zero")
}

// validatePage fills in the defaults before checking the bounds.
func validatePage(v *common.Validator, p *Page) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}

	v.Check(p.Page >= 1, "page", "must be greater than zero")
	v.Check(p.Limit >= 1 && p.Limit <= MaxPageLimit, "limit", "must be between 1 and 50")
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}

func newPagination(p Page, total int) Pagination {
	return Pagination{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: (total + p.Limit - 1) / p.Limit,
	}
}
