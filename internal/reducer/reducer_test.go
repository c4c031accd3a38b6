package reducer

import (
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/mms-parser/internal/email"
	"github.com/shineum/mms-parser/internal/errsink"
	"github.com/shineum/mms-parser/internal/mimetree"
)

func header(kv ...string) message.Header {
	var h message.Header
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func text(s string) *mimetree.Part {
	return mimetree.NewLeaf(header(), "text/plain", "", []byte(s))
}

func file(mediaType, name string) *mimetree.Part {
	return mimetree.NewLeaf(header(), mediaType, name, []byte(name))
}

func attachmentNames(msg *email.Message) []string {
	names := make([]string, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		names = append(names, att.Filename)
	}
	return names
}

func TestReduce_CarrierScenario(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(
		header("From", "foo@example-carrier.co.uk", "Subject", "pic", "Date", "Mon, 02 Jan 2006 15:04:05 +0000"),
		"multipart/mixed",
		text("hello"),
		file("image/jpeg", "pic.jpg"),
	)

	msg, err := New(errsink.New(), nil).Reduce(root)
	require.NoError(t, err)

	assert.Equal(t, "foo@example-carrier.co.uk", msg.From)
	assert.Equal(t, "pic", msg.Subject)
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 +0000", msg.Datetime)
	assert.Equal(t, "hello", msg.BodyText)
	assert.Equal(t, []string{"pic.jpg"}, attachmentNames(msg))
	assert.Equal(t, "image/jpeg", msg.Attachments[0].ContentType)
	assert.Equal(t, []byte("pic.jpg"), msg.Attachments[0].Content)
}

func TestReduce_TextLeavesConcatenateInOrder(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(header("From", "a@example.com"), "multipart/mixed",
		text("one "), text("two "), text("three"))

	msg, err := New(nil, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "one two three", msg.BodyText)
	assert.Empty(t, msg.Attachments)
}

func TestReduce_LeafRootBodyIsEntireText(t *testing.T) {
	t.Parallel()

	root := mimetree.NewLeaf(header("From", "a@example.com"), "text/plain", "", []byte("whole body\n"))

	msg, err := New(nil, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "whole body\n", msg.BodyText)
}

func TestReduce_AttachmentsKeepEncounterOrder(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(header("From", "a@example.com"), "multipart/mixed",
		file("image/gif", "1.gif"),
		text("caption"),
		mimetree.NewBranch(header(), "multipart/related",
			file("audio/amr", "3.amr"),
			text(" more"),
		),
		file("application/smil", "2.smil"),
	)

	msg, err := New(nil, nil).Reduce(root)
	require.NoError(t, err)

	// The nested level is reduced after its parent level finishes.
	assert.Equal(t, []string{"1.gif", "2.smil", "3.amr"}, attachmentNames(msg))
	assert.Equal(t, "caption more", msg.BodyText)
	for _, att := range msg.Attachments {
		assert.NotEqual(t, "text/plain", att.ContentType)
		assert.False(t, strings.HasPrefix(att.ContentType, "multipart/"))
	}
}

func TestReduce_AllDeferredMultipartsProcessed(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(header("From", "a@example.com"), "multipart/mixed",
		mimetree.NewBranch(header(), "multipart/alternative", text("first")),
		mimetree.NewBranch(header(), "multipart/alternative", text(" second")),
	)

	msg, err := New(nil, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "first second", msg.BodyText)
}

func TestReduce_NestedHeadersDoNotOverwrite(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(header("From", "outer@example.com", "Subject", "outer"), "multipart/mixed",
		mimetree.NewBranch(header("From", "inner@example.com", "Subject", "inner"), "multipart/related",
			text("x"),
		),
	)

	msg, err := New(nil, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "outer@example.com", msg.From)
	assert.Equal(t, "outer", msg.Subject)
}

func TestReduce_NestedHeadersFillMissingSender(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(header(), "multipart/mixed",
		mimetree.NewBranch(header("From", "inner@example.com"), "multipart/related", text("x")),
	)

	msg, err := New(nil, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "inner@example.com", msg.From)
}

func TestReduce_NilTree(t *testing.T) {
	t.Parallel()

	msg, err := New(nil, nil).Reduce(nil)
	assert.Nil(t, msg)
	assert.True(t, errors.Is(err, email.ErrStructural))
}

func TestReduce_NilChild(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(header("From", "a@example.com"), "multipart/mixed", text("x"), nil)
	msg, err := New(nil, nil).Reduce(root)
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, email.ErrStructural)
}

func TestReduce_DecodeFailureAbortsSubtree(t *testing.T) {
	t.Parallel()

	sink := errsink.New()
	root := mimetree.NewBranch(header("From", "a@example.com"), "multipart/mixed",
		text("kept"),
		mimetree.NewBranch(header(), "multipart/related",
			mimetree.NewFailed(header(), "text/plain", errors.New("bad charset")),
			file("image/png", "after.png"),
			text(" caption"),
		),
		mimetree.NewFailed(header(), "multipart/alternative", errors.New("truncated multipart")),
		mimetree.NewBranch(header(), "multipart/related",
			file("image/png", "sibling.png"),
		),
	)

	msg, err := New(sink, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "kept caption", msg.BodyText)
	assert.Equal(t, []string{"after.png", "sibling.png"}, attachmentNames(msg))

	all := sink.All()
	require.Len(t, all, 2)
	assert.Contains(t, all[0], "bad charset")
	assert.Contains(t, all[1], "truncated multipart")
}

func TestReduce_FailedAttachmentSkipped(t *testing.T) {
	t.Parallel()

	sink := errsink.New()
	root := mimetree.NewBranch(header("From", "a@example.com"), "multipart/mixed",
		file("image/png", "before.png"),
		mimetree.NewFailed(header(), "image/gif", errors.New("illegal base64 data")),
		text("hi"),
		file("image/png", "after.png"),
	)

	msg, err := New(sink, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.BodyText)
	assert.Equal(t, []string{"before.png", "after.png"}, attachmentNames(msg))

	last, ok := sink.Last()
	require.True(t, ok)
	assert.Contains(t, last, "image/gif")
	assert.Contains(t, last, "illegal base64 data")
}

func TestReduce_RootDecodeFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root *mimetree.Part
	}{
		{
			name: "leaf",
			root: mimetree.NewFailed(header("From", "a@example.com"), "text/plain", errors.New("illegal base64 data")),
		},
		{
			name: "multipart",
			root: mimetree.NewFailed(header("From", "a@example.com"), "multipart/mixed", errors.New("truncated multipart")),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sink := errsink.New()
			msg, err := New(sink, nil).Reduce(tt.root)
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, email.ErrAdapter)
			assert.Zero(t, sink.Len())
		})
	}
}

func TestReduce_EmptyNestedMultipartContributesNothing(t *testing.T) {
	t.Parallel()

	root := mimetree.NewBranch(header("From", "a@example.com"), "multipart/mixed",
		text("body"),
		mimetree.NewBranch(header(), "multipart/alternative"),
	)

	msg, err := New(nil, nil).Reduce(root)
	require.NoError(t, err)
	assert.Equal(t, "body", msg.BodyText)
}
