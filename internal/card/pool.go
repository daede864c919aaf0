package card

// Pool owns every derived record. Siblings are stored as indices into the pool.
type Pool struct {
	records []*Record
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Append adds rec to the pool without linking it.
func (p *Pool) Append(rec *Record) *Record {
	rec.index = len(p.records)
	rec.sibling = -1
	p.records = append(p.records, rec)
	return rec
}

// Pair appends both faces and links them to each other. Siblings are symmetric
// for every pair built this way; LinkTo is the one exception.
func (p *Pool) Pair(front, back *Record) {
	p.Append(front)
	p.Append(back)
	p.Link(front, back)
}

// Link makes a and b siblings of each other.
func (p *Pool) Link(a, b *Record) {
	a.sibling = b.index
	b.sibling = a.index
}

// LinkTo points rec at sibling without changing sibling's own link. Used when the
// other face of rec was merged into an earlier printing: Sibling(rec) returns
// sibling, but Sibling(sibling) keeps returning its original pair.
func (p *Pool) LinkTo(rec, sibling *Record) {
	rec.sibling = sibling.index
}

// Sibling returns the other face of rec, or nil when rec is unlinked.
func (p *Pool) Sibling(rec *Record) *Record {
	if rec == nil || rec.sibling < 0 || rec.sibling >= len(p.records) {
		return nil
	}
	return p.records[rec.sibling]
}

// Records returns the pooled records in insertion order.
func (p *Pool) Records() []*Record {
	return p.records
}

// Len returns the number of records.
func (p *Pool) Len() int {
	return len(p.records)
}

// At returns the record at index i.
func (p *Pool) At(i int) *Record {
	return p.records[i]
}

// ByDisplayName returns the first record with exactly the given display name.
func (p *Pool) ByDisplayName(name string) *Record {
	for _, rec := range p.records {
		if rec.DisplayName == name {
			return rec
		}
	}
	return nil
}

// WithTemplate returns the records rendered by the given pass, in pool order.
func (p *Pool) WithTemplate(t Template) []*Record {
	var out []*Record
	for _, rec := range p.records {
		if rec.Template == t {
			out = append(out, rec)
		}
	}
	return out
}

// Flags reports which renderer overrides rec needs, compared against its sibling.
// An unlinked record is compared against an empty face.
type Flags struct {
	Color     bool
	Artist    bool
	Art       bool
	Watermark bool
}

// Any reports whether any override is needed.
func (f Flags) Any() bool {
	return f.Color || f.Artist || f.Art || f.Watermark
}

// Flags computes the override flags for rec.
func (p *Pool) Flags(rec *Record) Flags {
	sib := p.Sibling(rec)
	if sib == nil {
		sib = &Record{}
	}
	return Flags{
		Color:     rec.Color != sib.Color,
		Artist:    rec.Artist != sib.Artist || rec.ManualArtist,
		Art:       rec.Face == Back || rec.Layout == LayoutSplit,
		Watermark: rec.Watermark != "" || sib.Watermark != "",
	}
}

// BackfillWatermark copies the sibling's watermark into rec when rec has none.
// It reports whether rec changed.
func (p *Pool) BackfillWatermark(rec *Record) bool {
	if rec.Watermark != "" {
		return false
	}
	sib := p.Sibling(rec)
	if sib == nil || sib.Watermark == "" {
		return false
	}
	rec.Watermark = sib.Watermark
	return true
}

// BackfillWatermarks runs BackfillWatermark over the whole pool and returns the
// records that changed. A second call changes nothing.
func (p *Pool) BackfillWatermarks() []*Record {
	var changed []*Record
	for _, rec := range p.records {
		if p.BackfillWatermark(rec) {
			changed = append(changed, rec)
		}
	}
	return changed
}
