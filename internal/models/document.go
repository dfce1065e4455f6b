package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Keys of the editor annotation JSON that the SDK reads or writes.
const (
	KeyMetadata     = "metadata"
	KeyInstances    = "instances"
	KeyTags         = "tags"
	KeyComments     = "comments"
	KeyType         = "type"
	KeyClassName    = "className"
	KeyClassID      = "classId"
	KeyAttributes   = "attributes"
	KeyName         = "name"
	KeyGroupName    = "groupName"
	KeyGroupID      = "groupId"
	KeyID           = "id"
	KeyTemplateName = "templateName"
	KeyTemplateID   = "templateId"
)

// InstanceTypeTemplate is the instance type that carries a templateName.
const InstanceTypeTemplate = "template"

// Document is a raw annotation document as produced by the annotation
// editor. It is kept as a generic JSON object so that fields the SDK does not
// know about survive a read/resolve/write cycle untouched.
type Document map[string]interface{}

// ParseDocument decodes an annotation document. Numbers are kept as
// json.Number so unknown numeric fields round-trip without precision loss.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode annotation document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode annotation document: not a JSON object")
	}
	return doc, nil
}

// Metadata returns the document's metadata object, or nil if absent.
func (d Document) Metadata() map[string]interface{} {
	m, _ := d[KeyMetadata].(map[string]interface{})
	return m
}

// Name returns metadata.name, or "" if absent.
func (d Document) Name() string {
	name, _ := d.Metadata()[KeyName].(string)
	return name
}
