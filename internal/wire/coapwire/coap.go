// Package coapwire implements just enough of RFC 7252 (CoAP) message
// framing and RFC 6690 (CoRE Link Format) parsing to send a GET and decode
// the response. No CoAP library is used: the wire format is a four-byte
// header plus a handful of option rules, and keeping it in one
// small file makes the framing this code actually relies on auditable.
package coapwire

import (
	"encoding/binary"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const Version = 1

type MsgType uint8

const (
	TypeConfirmable    MsgType = 0
	TypeNonConfirmable MsgType = 1
	TypeAck            MsgType = 2
	TypeReset          MsgType = 3
)

// Code is a (class, detail) pair rendered as class.detail, e.g. 2.05.
type Code struct {
	Class  uint8
	Detail uint8
}

func (c Code) byte() byte { return (c.Class << 5) | (c.Detail & 0x1F) }

func codeFromByte(b byte) Code {
	return Code{Class: (b >> 5) & 0x07, Detail: b & 0x1F}
}

var (
	CodeGET          = Code{0, 1}
	CodeContent      = Code{2, 5}
	CodeValid        = Code{2, 3}
	CodeBadRequest   = Code{4, 0}
	CodeUnauthorized = Code{4, 1}
	CodeNotFound     = Code{4, 4}
	CodeEmpty        = Code{0, 0}
)

func (c Code) Equal(o Code) bool { return c.Class == o.Class && c.Detail == o.Detail }

const (
	OptionURIPath       = 11
	OptionContentFormat = 12
	OptionURIQuery      = 15

	ContentFormatLinkFormat = 40
	payloadMarker           = 0xFF
)

// Message is a decoded or to-be-encoded CoAP message.
type Message struct {
	Type      MsgType
	Code      Code
	MessageID uint16
	Token     []byte
	Options   []Option
	Payload   []byte
}

// Option is one CoAP option, identified by its absolute option number.
type Option struct {
	Number uint16
	Value  []byte
}

// BuildGET encodes a GET request for the given URI path with no query.
// Path segments are encoded as successive Uri-Path options per RFC 7252 §5.10.2.
func BuildGET(msgType MsgType, messageID uint16, token []byte, uriPath string) []byte {
	m := Message{Type: msgType, Code: CodeGET, MessageID: messageID, Token: token}
	for _, seg := range strings.Split(strings.Trim(uriPath, "/"), "/") {
		if seg == "" {
			continue
		}
		m.Options = append(m.Options, Option{Number: OptionURIPath, Value: []byte(seg)})
	}
	return m.Encode()
}

// BuildEmptyAck acknowledges a confirmable message with a bare 0.00 ACK.
func BuildEmptyAck(messageID uint16, token []byte) []byte {
	m := Message{Type: TypeAck, Code: CodeEmpty, MessageID: messageID, Token: token}
	return m.Encode()
}

// Encode serializes m per RFC 7252 §3: a 4-byte header, the token, options
// sorted by option number (each as a delta from the previous), and an
// optional 0xFF-prefixed payload.
func (m Message) Encode() []byte {
	tkl := len(m.Token)
	first := byte(Version<<6) | byte(m.Type<<4) | byte(tkl&0x0F)

	buf := make([]byte, 0, 4+tkl+16)
	buf = append(buf, first, m.Code.byte())
	buf = binary.BigEndian.AppendUint16(buf, m.MessageID)
	buf = append(buf, m.Token...)

	opts := append([]Option(nil), m.Options...)
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Number < opts[j].Number })

	var prev uint16
	for _, opt := range opts {
		buf = append(buf, encodeOption(opt.Number-prev, opt.Value)...)
		prev = opt.Number
	}

	if len(m.Payload) > 0 {
		buf = append(buf, payloadMarker)
		buf = append(buf, m.Payload...)
	}
	return buf
}

func encodeOption(delta uint16, value []byte) []byte {
	length := uint16(len(value))

	d, extD := nibbleAndExtension(delta)
	l, extL := nibbleAndExtension(length)

	out := make([]byte, 0, 1+len(extD)+len(extL)+len(value))
	out = append(out, (d<<4)|l)
	out = append(out, extD...)
	out = append(out, extL...)
	out = append(out, value...)
	return out
}

func nibbleAndExtension(v uint16) (byte, []byte) {
	switch {
	case v < 13:
		return byte(v), nil
	case v < 269:
		return 13, []byte{byte(v - 13)}
	default:
		ext := make([]byte, 2)
		binary.BigEndian.PutUint16(ext, v-269)
		return 14, ext
	}
}

var ErrMalformed = errors.New("coapwire: malformed message")

// Decode parses a CoAP message, returning ErrMalformed if the header or
// option encoding is invalid.
func Decode(data []byte) (*Message, error) {
	if len(data) < 4 {
		return nil, ErrMalformed
	}
	first := data[0]
	version := (first >> 6) & 0x03
	if version != Version {
		return nil, ErrMalformed
	}
	msgType := MsgType((first >> 4) & 0x03)
	tkl := int(first & 0x0F)

	code := codeFromByte(data[1])
	msgID := binary.BigEndian.Uint16(data[2:4])

	offset := 4
	if offset+tkl > len(data) {
		return nil, ErrMalformed
	}
	token := append([]byte(nil), data[offset:offset+tkl]...)
	offset += tkl

	var options []Option
	var prev uint16
	for offset < len(data) {
		if data[offset] == payloadMarker {
			offset++
			break
		}
		optByte := data[offset]
		offset++
		delta := uint16((optByte >> 4) & 0x0F)
		length := uint16(optByte & 0x0F)

		var err error
		delta, offset, err = extendField(data, offset, delta)
		if err != nil {
			return nil, err
		}
		length, offset, err = extendField(data, offset, length)
		if err != nil {
			return nil, err
		}
		if offset+int(length) > len(data) {
			return nil, ErrMalformed
		}
		num := prev + delta
		prev = num
		options = append(options, Option{Number: num, Value: append([]byte(nil), data[offset:offset+int(length)]...)})
		offset += int(length)
	}

	var payload []byte
	if offset < len(data) {
		payload = append([]byte(nil), data[offset:]...)
	}

	return &Message{Type: msgType, Code: code, MessageID: msgID, Token: token, Options: options, Payload: payload}, nil
}

func extendField(data []byte, offset int, nibble uint16) (uint16, int, error) {
	switch nibble {
	case 13:
		if offset >= len(data) {
			return 0, offset, ErrMalformed
		}
		return uint16(data[offset]) + 13, offset + 1, nil
	case 14:
		if offset+2 > len(data) {
			return 0, offset, ErrMalformed
		}
		return binary.BigEndian.Uint16(data[offset:offset+2]) + 269, offset + 2, nil
	default:
		return nibble, offset, nil
	}
}

// Resource is one entry from a parsed CoRE Link Format document.
type Resource struct {
	URI           string
	ResourceType  string
	InterfaceDesc string
	ContentFormat string
	Title         string
	Observable    bool
}

var (
	entrySplit = regexp.MustCompile(`,(?:\s*<)`)
	uriPattern = regexp.MustCompile(`^<([^>]+)>`)
	attrPattern = regexp.MustCompile(`;([^;=]+)(?:=(?:"([^"]*)"|([^;,]*)))?`)
)

// ParseLinkFormat parses an RFC 6690 CoRE Link Format document such as
// `</temp>;rt="temperature";obs;ct=50,</humidity>;rt="humidity"`.
func ParseLinkFormat(payload string) []Resource {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil
	}

	var resources []Resource
	for _, raw := range splitEntries(payload) {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		m := uriPattern.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		res := Resource{URI: m[1]}
		rest := entry[len(m[0]):]
		for _, am := range attrPattern.FindAllStringSubmatch(rest, -1) {
			key := strings.TrimSpace(am[1])
			var value string
			hasValue := am[2] != "" || am[3] != ""
			if am[2] != "" {
				value = am[2]
			} else {
				value = am[3]
			}
			switch key {
			case "rt":
				res.ResourceType = value
			case "if":
				res.InterfaceDesc = value
			case "ct":
				res.ContentFormat = value
			case "title":
				res.Title = value
			case "obs":
				res.Observable = true
			default:
				_ = hasValue
			}
		}
		resources = append(resources, res)
	}
	return resources
}

func splitEntries(payload string) []string {
	loc := entrySplit.FindAllStringIndex(payload, -1)
	if loc == nil {
		return []string{payload}
	}
	var parts []string
	prev := 0
	for _, l := range loc {
		parts = append(parts, payload[prev:l[0]])
		prev = l[0] + 1
	}
	parts = append(parts, payload[prev:])
	return parts
}

// ContentFormatNumber parses a numeric option value into an int, returning
// 0 if it isn't a valid number.
func ContentFormatNumber(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
