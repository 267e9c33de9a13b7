package domain

import "time"

// MaxDetailImages caps the gallery of a single project.
const MaxDetailImages = 8

// Project is a portfolio case study.
type Project struct {
	ID               string    `json:"id" db:"id" bson:"_id"`
	Title            string    `json:"title" db:"title" bson:"title"`
	Description      string    `json:"description" db:"description" bson:"description"`
	ShortDescription string    `json:"shortDescription" db:"short_description" bson:"shortDescription"`
	MainImage        string    `json:"mainImage" db:"main_image" bson:"mainImage"`
	DetailImages     []string  `json:"detailImages" db:"-" bson:"detailImages"`
	LiveLink         string    `json:"liveLink,omitempty" db:"live_link" bson:"liveLink,omitempty"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// ImageURLs returns the main image followed by the gallery.
func (p Project) ImageURLs() []string {
	urls := make([]string, 0, 1+len(p.DetailImages))
	if p.MainImage != "" {
		urls = append(urls, p.MainImage)
	}
	return append(urls, p.DetailImages...)
}

// ProjectInput carries the caller-supplied fields of a new project.
type ProjectInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	MainImage        string   `json:"mainImage"`
	DetailImages     []string `json:"detailImages,omitempty"`
	LiveLink         string   `json:"liveLink,omitempty"`
}

// ProjectPatch is a partial update. Nil fields keep their stored value.
type ProjectPatch struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	ShortDescription *string   `json:"shortDescription,omitempty"`
	MainImage        *string   `json:"mainImage,omitempty"`
	DetailImages     *[]string `json:"detailImages,omitempty"`
	LiveLink         *string   `json:"liveLink,omitempty"`
}

// Apply merges the patch into p and returns the result. p is not modified.
func (patch ProjectPatch) Apply(p Project) Project {
	out := p
	out.DetailImages = append([]string(nil), p.DetailImages...)
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.ShortDescription != nil {
		out.ShortDescription = *patch.ShortDescription
	}
	if patch.MainImage != nil {
		out.MainImage = *patch.MainImage
	}
	if patch.DetailImages != nil {
		out.DetailImages = append([]string(nil), (*patch.DetailImages)...)
	}
	if patch.LiveLink != nil {
		out.LiveLink = *patch.LiveLink
	}
	return out
}
