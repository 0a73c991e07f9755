package pagination

// CountPages derives the number of pages from the profile. Content that fits
// the single-page body is one page. Otherwise the first page takes its body
// height and each further page takes the inner-page height, unless what is
// left fits the last-page body, which ends the count.
func CountPages(p HeightProfile) int {
	remaining := p.ContentHeight()
	if fits(remaining, p.Available(SinglePage)) {
		return 1
	}

	count := 1
	remaining -= p.Available(FirstPage)
	for remaining > epsilon {
		count++
		if fits(remaining, p.Available(LastPage)) {
			break
		}
		if p.Available(InnerPages) <= 0 {
			break
		}
		remaining -= p.Available(InnerPages)
	}
	if count == 1 {
		// too big for a single page means at least a first and a last page
		count = 2
	}
	return count
}
