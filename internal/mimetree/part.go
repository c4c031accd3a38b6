// Package mimetree decodes raw MIME mail into a tree of parts that the
// reducer can walk without touching the wire format.
package mimetree

import (
	"fmt"
	"os"
	"strings"

	"github.com/emersion/go-message"
)

// Part is one node of a decoded MIME tree. A leaf carries a decoded body,
// held in memory or in a scratch file; a branch carries children.
type Part struct {
	Header    message.Header
	MediaType string
	Params    map[string]string
	Filename  string
	Children  []*Part

	body []byte
	path string
	err  error
}

// NewLeaf returns a leaf part with an in-memory body. Adapters other than
// Decoder use it to build trees.
func NewLeaf(header message.Header, mediaType, filename string, body []byte) *Part {
	return &Part{Header: header, MediaType: mediaType, Filename: filename, body: body}
}

// NewBranch returns a multipart part with the given children.
func NewBranch(header message.Header, mediaType string, children ...*Part) *Part {
	return &Part{Header: header, MediaType: mediaType, Children: children}
}

// NewFailed returns a part whose body could not be decoded.
func NewFailed(header message.Header, mediaType string, err error) *Part {
	return &Part{Header: header, MediaType: mediaType, err: err}
}

// IsMultipart reports whether the part has a multipart/* media type.
func (p *Part) IsMultipart() bool {
	return strings.HasPrefix(p.MediaType, "multipart/")
}

// IsLeaf reports whether the part has no children.
func (p *Part) IsLeaf() bool {
	return len(p.Children) == 0
}

// Err returns the decode error recorded for this part, if any.
func (p *Part) Err() error {
	return p.err
}

// HeaderText returns the RFC 2047 decoded value of a header field. Values
// that cannot be decoded are returned raw.
func (p *Part) HeaderText(key string) string {
	v, err := p.Header.Text(key)
	if err != nil {
		return p.Header.Get(key)
	}
	return v
}

// Body returns the decoded body of a leaf part.
func (p *Part) Body() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.path == "" {
		return p.body, nil
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read part body: %w", err)
	}
	return data, nil
}

// Text returns the decoded body as a string.
func (p *Part) Text() (string, error) {
	data, err := p.Body()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Path returns the scratch file backing the body, or "" when it is in memory.
func (p *Part) Path() string {
	return p.path
}

// Take hands ownership of the body to the caller. After Take the part no
// longer references the payload and Release will not touch it.
func (p *Part) Take() (content []byte, path string) {
	content, path = p.body, p.path
	p.body, p.path = nil, ""
	return content, path
}

// Release frees the body of this part.
func (p *Part) Release() error {
	p.body = nil
	if p.path == "" {
		return nil
	}
	path := p.path
	p.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove scratch file: %w", err)
	}
	return nil
}

// ReleaseAll frees the bodies of this part and all of its descendants.
func (p *Part) ReleaseAll() error {
	if p == nil {
		return nil
	}
	var first error
	if err := p.Release(); err != nil {
		first = err
	}
	for _, child := range p.Children {
		if err := child.ReleaseAll(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Walk calls fn for p and every descendant in tree order.
func (p *Part) Walk(fn func(part *Part, depth int)) {
	p.walk(fn, 0)
}

func (p *Part) walk(fn func(*Part, int), depth int) {
	if p == nil {
		return
	}
	fn(p, depth)
	for _, child := range p.Children {
		child.walk(fn, depth+1)
	}
}
