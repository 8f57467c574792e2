package ingestion

// Chunking defaults. Fragments overlap so a sentence split across a
// boundary still appears whole in one of them.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// ChunkText splits text into overlapping rune windows. The final chunk
// carries whatever remains and may be shorter than size. Text at or
// under size yields a single chunk.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}

	runes := []rune(text)
	if len(runes) <= size {
		if len(runes) == 0 {
			return nil
		}
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
