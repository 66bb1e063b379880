package clippings

// Group merges consecutive clips of the same (book, author) into BookClips.
// A book that comes back after another one starts a new group; file order is
// presentation order downstream and is never rearranged.
func Group(clips []Clip) []BookClips {
	var books []BookClips
	for _, clip := range clips {
		if n := len(books); n > 0 && books[n-1].Clips[0].SameBook(clip) {
			books[n-1].Clips = append(books[n-1].Clips, clip)
			continue
		}
		books = append(books, BookClips{
			BookName: clip.Book,
			Author:   clip.Author,
			Clips:    []Clip{clip},
		})
	}
	return books
}
