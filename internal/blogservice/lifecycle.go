package blogservice

import (
	"strings"

	"github.com/sushihentaime/haerin/internal/common"
)

// ValidateForDraft checks a draft save and returns the title to persist.
// A blank title becomes UntitledDraft.
func ValidateForDraft(title, content string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledDraft
	}

	v := common.NewValidator()
	v.Check(v.CheckStringLength(title, 1, MaxTitleLength), "title", "must not be more than 200 characters long")
	validateContent(v, content)
	if !v.Valid() {
		return "", v.ValidationError()
	}

	return title, nil
}

// ValidateForPublish checks the published invariants. hasCoverImage reports whether the blog
// ends up with an image, either newly attached or, when isUpdate is set, kept from before.
func ValidateForPublish(title, content string, hasCoverImage, isUpdate bool) error {
	v := common.NewValidator()
	validateTitle(v, strings.TrimSpace(title))
	validateContent(v, content)

	switch {
	case hasCoverImage:
	case isUpdate:
		v.AddError("cover_image", "must be provided, the blog has no cover image yet")
	default:
		v.AddError("cover_image", "must be provided")
	}

	if !v.Valid() {
		return v.ValidationError()
	}

	return nil
}

// Transition validates sub against the requested status and returns the fields to persist.
// current and existing are nil when the blog is being created. An empty requested status
// saves a draft.
func Transition(current *Status, requested Status, sub Submission, existing *Blog) (*Fields, error) {
	if requested == "" {
		requested = StatusDraft
	}

	v := common.NewValidator()
	validateStatus(v, requested)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	content := sanitizeContent(sub.Content)
	isUpdate := existing != nil
	hasNewCover := sub.Cover != nil

	f := &Fields{
		Content:     content,
		Status:      requested,
		UploadCover: hasNewCover,
	}

	switch requested {
	case StatusDraft:
		title, err := ValidateForDraft(sub.Title, content)
		if err != nil {
			return nil, err
		}
		f.Title = title

	case StatusPublished:
		hasCover := hasNewCover || (isUpdate && existing.Cover != nil)
		if err := ValidateForPublish(sub.Title, content, hasCover, isUpdate); err != nil {
			return nil, err
		}
		f.Title = strings.TrimSpace(sub.Title)

		wasPublished := current != nil && *current == StatusPublished
		f.StampPublished = !wasPublished && (existing == nil || existing.PublishedAt == nil)
	}

	return f, nil
}
