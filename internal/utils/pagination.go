package utils

import "math"

type Page struct {
	Number int
	IsLink bool
}

// GeneratePagination builds the page list for the admin list views: a window
// around the current page plus the first and last pages, with ellipsis gaps
// encoded as Number 0.
func GeneratePagination(currentPage, totalPages int) map[string]interface{} {
	if totalPages <= 1 {
		return nil
	}

	const window = 2
	var pages []Page

	pages = append(pages, Page{Number: 1, IsLink: true})
	if currentPage > window+2 {
		pages = append(pages, Page{Number: 0, IsLink: false})
	}

	start := int(math.Max(2, float64(currentPage-window)))
	end := int(math.Min(float64(totalPages-1), float64(currentPage+window)))
	for i := start; i <= end; i++ {
		pages = append(pages, Page{Number: i, IsLink: true})
	}

	if currentPage < totalPages-(window+1) {
		pages = append(pages, Page{Number: 0, IsLink: false})
	}
	pages = append(pages, Page{Number: totalPages, IsLink: true})

	finalPages := make([]Page, 0, len(pages))
	seen := make(map[int]bool)
	for _, p := range pages {
		if p.Number == currentPage {
			p.IsLink = false
		}
		if p.Number == 0 {
			finalPages = append(finalPages, p)
			continue
		}
		if !seen[p.Number] {
			finalPages = append(finalPages, p)
			seen[p.Number] = true
		}
	}

	return map[string]interface{}{
		"CurrentPage": currentPage,
		"TotalPages":  totalPages,
		"HasPrev":     currentPage > 1,
		"HasNext":     currentPage < totalPages,
		"PrevPage":    currentPage - 1,
		"NextPage":    currentPage + 1,
		"Pages":       finalPages,
	}
}
