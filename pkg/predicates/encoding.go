package predicates

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/encoding/protowire"
)

const protoSchemaFile = "schema.proto"

// protoWire walks every field of a protobuf wire-format message.
func protoWire(value []byte, _ ...any) bool {
	b := value
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return false
		}
		b = b[n:]
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return false
		}
		b = b[n:]
	}
	return true
}

// ProtoWire holds when the bytes are a well-formed protobuf wire encoding.
func ProtoWire() Predicate { return Typed[[]byte]("ProtoWire", protoWire) }

// ProtoMessage holds when the bytes decode as message (a fully qualified name)
// from the given .proto schema source. The schema is compiled here, so a
// broken schema is reported at construction rather than on every value.
func ProtoMessage(schema, message string) (Predicate, error) {
	md, err := compileMessage(schema, message)
	if err != nil {
		return Predicate{}, err
	}
	return Typed[[]byte]("ProtoMessage", func(value []byte, _ ...any) bool {
		return dynamic.NewMessage(md).Unmarshal(value) == nil
	}, message), nil
}

func compileMessage(schema, message string) (*desc.MessageDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{protoSchemaFile: schema}),
	}
	fds, err := parser.ParseFiles(protoSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing proto schema: %v", ErrBadArguments, err)
	}
	md := fds[0].FindMessage(message)
	if md == nil {
		return nil, fmt.Errorf("%w: message %q not found in proto schema", ErrBadArguments, message)
	}
	return md, nil
}
