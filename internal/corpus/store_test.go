package corpus

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/caselink/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	return store
}

func TestRegisterDocumentDeduplicatesByFingerprint(t *testing.T) {
	store := newTestStore(t)

	first, err := store.RegisterDocument(Document{Title: "Smith v. Jones", Fingerprint: "abc123"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := store.RegisterDocument(Document{Title: "Smith v. Jones (reupload)", Fingerprint: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	docs, total, err := store.Documents(0, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, docs, 1)
}

func TestSaveMentionsResetsProcessedFlag(t *testing.T) {
	store := newTestStore(t)
	doc, err := store.RegisterDocument(Document{Title: "Opinion", Fingerprint: "fp-1"})
	require.NoError(t, err)

	mention := model.CitationMention{RawText: "123 Cal. 456", Reporter: "Cal.", Volume: 123, Page: 456}
	require.NoError(t, store.SaveMentions(doc.ID, []model.CitationMention{mention}))

	unprocessed, err := store.Unprocessed()
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)

	require.NoError(t, store.ReplaceResolutions(doc.ID, []model.Resolution{{
		Mention:       mention,
		NormalizedKey: "Cal.|123|456|_",
		Path:          model.PathUnresolved,
	}}))

	unprocessed, err = store.Unprocessed()
	require.NoError(t, err)
	assert.Empty(t, unprocessed)

	// New mentions re-open the document for resolution.
	require.NoError(t, store.SaveMentions(doc.ID, []model.CitationMention{mention}))
	unprocessed, err = store.Unprocessed()
	require.NoError(t, err)
	assert.Len(t, unprocessed, 1)
}

func TestMentionsForRoundTripsFields(t *testing.T) {
	store := newTestStore(t)
	doc, err := store.RegisterDocument(Document{Title: "Opinion", Fingerprint: "fp-1"})
	require.NoError(t, err)

	in := model.CitationMention{
		RawText: "Smith v. Jones, 123 Cal. 456 (1998)",
		Reporter: "Cal.", Volume: 123, Page: 456, Year: 1998,
		CaseName: "Smith v. Jones", Court: "Cal. Sup. Ct.",
		PageNumber: 7, SpanStart: 40, SpanEnd: 75,
	}
	require.NoError(t, store.SaveMentions(doc.ID, []model.CitationMention{in}))

	out, err := store.MentionsFor(doc.ID)
	require.NoError(t, err)
	require.Len(t, out, 1)

	in.SourceDocumentID = doc.ID
	assert.Equal(t, in, out[0])
}

func TestResolvedEdgesFiltersByConfidenceAndTarget(t *testing.T) {
	store := newTestStore(t)
	doc, err := store.RegisterDocument(Document{Title: "Opinion", Fingerprint: "fp-1"})
	require.NoError(t, err)

	resolutions := []model.Resolution{
		{Mention: model.CitationMention{RawText: "a"}, ToDocumentID: "t-1", NormalizedKey: "Cal.|1|2|_", Confidence: 0.95, Path: model.PathExact},
		{Mention: model.CitationMention{RawText: "b"}, ToDocumentID: "t-2", NormalizedKey: "Cal.|3|4|_", Confidence: 0.4, Path: model.PathArbiter},
		{Mention: model.CitationMention{RawText: "c"}, NormalizedKey: "Cal.|5|6|_", Confidence: 0.95, Path: model.PathUnresolved},
	}
	require.NoError(t, store.ReplaceResolutions(doc.ID, resolutions))

	edges, err := store.ResolvedEdges(0.7)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "t-1", edges[0].ToDocumentID)

	all, err := store.CitationsFrom(doc.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3, "unresolved and low-confidence records stay auditable")
}

func TestSnapshotIsOrderedAndIndexed(t *testing.T) {
	store := newTestStore(t)
	_, err := store.RegisterDocument(Document{ID: "b", Title: "Second", Fingerprint: "fp-b"})
	require.NoError(t, err)
	_, err = store.RegisterDocument(Document{ID: "a", Title: "First", Fingerprint: "fp-a"})
	require.NoError(t, err)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())

	docs := snap.All()
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)

	got, ok := snap.ByID("b")
	require.True(t, ok)
	assert.Equal(t, "Second", got.Title)

	_, ok = snap.ByID("missing")
	assert.False(t, ok)
}
