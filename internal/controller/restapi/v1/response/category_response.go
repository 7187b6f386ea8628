package response

import "github.com/hikari-systems/image-service/config"

type Size struct {
	Name     string `json:"name"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	MimeType string `json:"mimeType"`
}

type Category struct {
	Name  string `json:"name"`
	Sizes []Size `json:"sizes"`
}

// NewCategoryList builds the category listing: the implicit "default"
// category from the default size list, then every configured scaling
// set in name order.
func NewCategoryList(p *config.Profile) []Category {
	list := make([]Category, 0, len(p.ScalingSets)+1)

	if sizes := sizesFor(p, p.SizeKeys); len(sizes) > 0 {
		list = append(list, Category{Name: "default", Sizes: sizes})
	}

	for _, name := range p.Categories() {
		if sizes := sizesFor(p, p.ScalingSets[name]); len(sizes) > 0 {
			list = append(list, Category{Name: name, Sizes: sizes})
		}
	}

	return list
}

func sizesFor(p *config.Profile, keys []string) []Size {
	sizes := make([]Size, 0, len(keys))
	for _, key := range keys {
		spec, ok := p.Size(key)
		if !ok {
			continue
		}

		sizes = append(sizes, Size{
			Name:     key,
			Width:    spec.Width,
			Height:   spec.Height,
			MimeType: spec.MimeType,
		})
	}

	return sizes
}
