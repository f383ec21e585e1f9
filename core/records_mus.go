package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the records persisted by the storage layer. Timestamps
// are stored as Unix microseconds; floats as their IEEE 754 bit patterns.
var (
	IDMUS          = idMUS{}
	NodeMUS        = nodeMUS{}
	EdgeMUS        = edgeMUS{}
	VectorPointMUS = vectorPointMUS{}
	EventMUS       = eventMUS{}
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

type timeMUS struct{}

func (s timeMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (s timeMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

type float64MUS struct{}

func (s float64MUS) Marshal(v float64, bs []byte) (n int) {
	return varint.Uint64.Marshal(math.Float64bits(v), bs)
}

func (s float64MUS) Unmarshal(bs []byte) (v float64, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return math.Float64frombits(u), n, err
}

func (s float64MUS) Size(v float64) (size int) {
	return varint.Uint64.Size(math.Float64bits(v))
}

var (
	timeSer    = timeMUS{}
	float64Ser = float64MUS{}
)

type nodeMUS struct{}

func (s nodeMUS) Marshal(v Node, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ID, bs)
	n += ord.String.Marshal(v.Label, bs[n:])
	n += ord.String.Marshal(string(v.Type), bs[n:])
	return n + timeSer.Marshal(v.CreatedAt, bs[n:])
}

func (s nodeMUS) Unmarshal(bs []byte) (v Node, n int, err error) {
	v.ID, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		n1       int
		nodeType string
	)
	v.Label, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	nodeType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type = NodeType(nodeType)
	v.CreatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (s nodeMUS) Size(v Node) (size int) {
	size = IDMUS.Size(v.ID)
	size += ord.String.Size(v.Label)
	size += ord.String.Size(string(v.Type))
	return size + timeSer.Size(v.CreatedAt)
}

type edgeMUS struct{}

func (s edgeMUS) Marshal(v Edge, bs []byte) (n int) {
	n = ord.String.Marshal(v.Source, bs)
	n += ord.String.Marshal(v.Target, bs[n:])
	return n + ord.String.Marshal(v.Relation, bs[n:])
}

func (s edgeMUS) Unmarshal(bs []byte) (v Edge, n int, err error) {
	v.Source, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Target, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Relation, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s edgeMUS) Size(v Edge) (size int) {
	size = ord.String.Size(v.Source)
	size += ord.String.Size(v.Target)
	return size + ord.String.Size(v.Relation)
}

type vectorPointMUS struct{}

func (s vectorPointMUS) Marshal(v VectorPoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += float64Ser.Marshal(v.X, bs[n:])
	n += float64Ser.Marshal(v.Y, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	return n + ord.String.Marshal(v.Category, bs[n:])
}

func (s vectorPointMUS) Unmarshal(bs []byte) (v VectorPoint, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.X, n1, err = float64Ser.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Y, n1, err = float64Ser.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s vectorPointMUS) Size(v VectorPoint) (size int) {
	size = ord.String.Size(v.ID)
	size += float64Ser.Size(v.X)
	size += float64Ser.Size(v.Y)
	size += ord.String.Size(v.Content)
	return size + ord.String.Size(v.Category)
}

type eventMUS struct{}

func (s eventMUS) Marshal(v Event, bs []byte) (n int) {
	n = ord.String.Marshal(v.ID, bs)
	n += ord.String.Marshal(string(v.Type), bs[n:])
	n += ord.String.Marshal(v.Message, bs[n:])
	n += timeSer.Marshal(v.Timestamp, bs[n:])
	return n + ord.String.Marshal(string(v.Status), bs[n:])
}

func (s eventMUS) Unmarshal(bs []byte) (v Event, n int, err error) {
	v.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		n1  int
		str string
	)
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Type = EventType(str)
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	v.Status = EventStatus(str)
	return
}

func (s eventMUS) Size(v Event) (size int) {
	size = ord.String.Size(v.ID)
	size += ord.String.Size(string(v.Type))
	size += ord.String.Size(v.Message)
	size += timeSer.Size(v.Timestamp)
	return size + ord.String.Size(string(v.Status))
}
