package workflow

import "proxymill/internal/card"

// Partition splits records into consecutive chunks of at most size, keeping
// input order. A non-positive size yields a single chunk.
func Partition(records []*card.Record, size int) [][]*card.Record {
	if len(records) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(records)
	}
	chunks := make([][]*card.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
