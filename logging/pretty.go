package logging

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/valyala/fastjson"
)

var prettyParsers fastjson.ParserPool

// prettyWriter re-renders each JSON line produced by zerolog as
//
//	<timestamp> [<level>]: <message>
//	{ indented metadata }
//
// Lines that fail to parse are passed through unchanged.
type prettyWriter struct {
	out io.Writer
}

func newPrettyWriter(out io.Writer) *prettyWriter {
	return &prettyWriter{out: out}
}

func (w *prettyWriter) Write(p []byte) (int, error) {
	rendered, ok := renderPretty(p)
	if !ok {
		return w.out.Write(p)
	}
	if _, err := w.out.Write(rendered); err != nil {
		return 0, err
	}
	return len(p), nil
}

func renderPretty(line []byte) ([]byte, bool) {
	parser := prettyParsers.Get()
	defer prettyParsers.Put(parser)

	v, err := parser.ParseBytes(line)
	if err != nil {
		return nil, false
	}
	obj, err := v.Object()
	if err != nil {
		return nil, false
	}

	var ts, level, msg string
	var meta []byte
	obj.Visit(func(key []byte, val *fastjson.Value) {
		switch string(key) {
		case timestampKey:
			ts = string(val.GetStringBytes())
		case levelKey:
			level = string(val.GetStringBytes())
		case messageKey:
			msg = string(val.GetStringBytes())
		default:
			if meta == nil {
				meta = append(meta, '{')
			} else {
				meta = append(meta, ',')
			}
			k, _ := json.Marshal(string(key))
			meta = append(meta, k...)
			meta = append(meta, ':')
			meta = val.MarshalTo(meta)
		}
	})

	var buf bytes.Buffer
	buf.WriteString(ts)
	buf.WriteString(" [")
	buf.WriteString(level)
	buf.WriteString("]: ")
	buf.WriteString(msg)
	buf.WriteByte('\n')
	if meta != nil {
		meta = append(meta, '}')
		if err := json.Indent(&buf, meta, "", "  "); err != nil {
			buf.Write(meta)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), true
}
