// Package testutil builds GTFS static and realtime test inputs.
package testutil

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// ZipBuilder builds an in-memory GTFS static zip.
type ZipBuilder struct {
	m map[string]string
}

// NewZipBuilder returns a builder with a header-only file for every file the parser requires.
func NewZipBuilder() *ZipBuilder {
	return (&ZipBuilder{m: map[string]string{}}).Add(
		"agency.txt", "agency_id,agency_name,agency_url,agency_timezone",
	).Add(
		"routes.txt", "route_id,route_type",
	).Add(
		"stops.txt", "stop_id",
	).Add(
		"trips.txt", "route_id,service_id,trip_id",
	)
}

// Add sets the content of a file, one argument per line.
func (z *ZipBuilder) Add(fileName string, lines ...string) *ZipBuilder {
	z.m[fileName] = strings.Join(lines, "\n")
	return z
}

func (z *ZipBuilder) Remove(fileName string) *ZipBuilder {
	delete(z.m, fileName)
	return z
}

func (z *ZipBuilder) Build() []byte {
	var b bytes.Buffer
	zipWriter := zip.NewWriter(&b)
	for fileName, fileContent := range z.m {
		fileWriter, err := zipWriter.Create(fileName)
		if err != nil {
			panic(err)
		}
		if _, err := fileWriter.Write([]byte(fileContent)); err != nil {
			panic(err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		panic(err)
	}
	return b.Bytes()
}

// MarshalFeed returns a serialized GTFS realtime message. A nil header is replaced by a
// version 2.0 header created at the given time.
func MarshalFeed(t *testing.T, header *gtfsrt.FeedHeader, entities ...*gtfsrt.FeedEntity) []byte {
	t.Helper()
	if header == nil {
		header = &gtfsrt.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
		}
	}
	message := gtfsrt.FeedMessage{
		Header: header,
		Entity: entities,
	}
	b, err := proto.Marshal(&message)
	if err != nil {
		t.Fatalf("failed to marshal GTFS-RT message: %s", err)
	}
	return b
}
