package listfile

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ProtoWriter wraps a Writer for streams of a single protobuf message
// type. On the first Add it stamps the file header with ProtoTypeKey
// (the message's fully-qualified name) and ProtoSetKey (a serialized
// FileDescriptorSet covering that message and everything it imports),
// then calls Init. A reader that only has the file, not the .proto
// sources, can still parse every record.
type ProtoWriter struct {
	w           *Writer
	initialized bool
}

// NewProtoWriter wraps w. w must not have had Init called yet: the
// first Add call does that once it knows the message type to describe.
func NewProtoWriter(w *Writer) *ProtoWriter {
	return &ProtoWriter{w: w}
}

// Add serializes msg and appends it as one record, initializing the
// underlying Writer's header from msg's type on the first call.
func (p *ProtoWriter) Add(msg proto.Message) error {
	if !p.initialized {
		if err := p.init(msg); err != nil {
			return err
		}
	}
	b, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("listfile: marshal proto record: %w", err)
	}
	return p.w.AddRecord(b)
}

func (p *ProtoWriter) init(msg proto.Message) error {
	d := msg.ProtoReflect().Descriptor()

	fdset := &descriptorpb.FileDescriptorSet{}
	seen := make(map[string]bool)
	var addFile func(fd protoreflect.FileDescriptor)
	addFile = func(fd protoreflect.FileDescriptor) {
		if seen[fd.Path()] {
			return
		}
		seen[fd.Path()] = true
		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			addFile(imports.Get(i).FileDescriptor)
		}
		fdset.File = append(fdset.File, protodesc.ToFileDescriptorProto(fd))
	}
	addFile(d.ParentFile())

	setBytes, err := proto.Marshal(fdset)
	if err != nil {
		return fmt.Errorf("listfile: marshal descriptor set: %w", err)
	}

	if err := p.w.AddMeta(ProtoTypeKey, string(d.FullName())); err != nil {
		return err
	}
	if err := p.w.AddMeta(ProtoSetKey, string(setBytes)); err != nil {
		return err
	}
	if err := p.w.Init(); err != nil {
		return err
	}

	p.initialized = true
	return nil
}

// Flush delegates to the wrapped Writer.
func (p *ProtoWriter) Flush() error { return p.w.Flush() }

// Close delegates to the wrapped Writer.
func (p *ProtoWriter) Close() error { return p.w.Close() }

// ProtoReader wraps a Reader for streams written by a ProtoWriter.
type ProtoReader struct {
	r *Reader
}

// NewProtoReader wraps r.
func NewProtoReader(r *Reader) *ProtoReader {
	return &ProtoReader{r: r}
}

// ProtoType returns the fully-qualified message name recorded by the
// writer, or the empty string if the file predates ProtoWriter.
func (p *ProtoReader) ProtoType() string {
	return p.r.GetMetadata()[ProtoTypeKey]
}

// FileDescriptorSet decodes the descriptor set the writer embedded in
// the header, letting a caller work with the schema without having the
// original .proto sources available.
func (p *ProtoReader) FileDescriptorSet() (*descriptorpb.FileDescriptorSet, error) {
	raw, ok := p.r.GetMetadata()[ProtoSetKey]
	if !ok {
		return nil, fmt.Errorf("listfile: no %s metadata present", ProtoSetKey)
	}
	fdset := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal([]byte(raw), fdset); err != nil {
		return nil, fmt.Errorf("listfile: decode descriptor set: %w", err)
	}
	return fdset, nil
}

// Next reads the next record and unmarshals it into msg.
func (p *ProtoReader) Next(msg proto.Message) error {
	rec, err := p.r.ReadRecord()
	if err != nil {
		return err
	}
	return proto.Unmarshal(rec, msg)
}
