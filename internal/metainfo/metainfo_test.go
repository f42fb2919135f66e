package metainfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTorrentBytes(infoDict string, extra string) []byte {
	return []byte("d" + extra + "4:info" + infoDict + "e")
}

func TestFromBytesSingleFile(t *testing.T) {
	pieces := strings.Repeat("A", 20) + strings.Repeat("B", 20)
	info := "d6:lengthi1024e4:name8:file.txt12:piece lengthi512e6:pieces" +
		"40:" + pieces + "e"
	raw := buildTorrentBytes(info, "8:announce20:http://tracker.test/")

	m, err := FromBytes(raw)
	require.NoError(t, err)
	require.NotNil(t, m.Info)
	assert.Equal(t, "file.txt", m.Info.Name)
	assert.Equal(t, int64(1024), m.Info.Length)
	assert.Equal(t, int64(1024), m.TotalLength())
	assert.Equal(t, 2, m.Info.NumPieces())
	assert.Equal(t, "http://tracker.test/", m.Announce)

	h, ok := m.Info.PieceHash(0)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("A", 20), string(h[:]))

	_, ok = m.Info.PieceHash(2)
	assert.False(t, ok)
}

func TestFromBytesMultiFile(t *testing.T) {
	pieces := strings.Repeat("C", 20)
	info := "d5:filesld6:lengthi10e4:pathl5:a.txteed6:lengthi20e4:pathl5:b.txteee" +
		"4:name3:dir12:piece lengthi16384e6:pieces20:" + pieces + "e"
	raw := buildTorrentBytes(info, "")

	m, err := FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(30), m.TotalLength())
	require.Len(t, m.Info.Files, 2)
	assert.Equal(t, []string{"a.txt"}, m.Info.Files[0].Path)
}

func TestInfoHashIsByteExactOverRawInfo(t *testing.T) {
	pieces := strings.Repeat("D", 20)
	info := "d6:lengthi1e4:name1:x12:piece lengthi1e6:pieces20:" + pieces + "e"
	raw := buildTorrentBytes(info, "")

	m, err := FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte(info), []byte(m.RawInfo))
	assert.NotZero(t, m.InfoHash)
}

func TestMissingInfoDictIsError(t *testing.T) {
	_, err := FromBytes([]byte("d8:announce3:xxxe"))
	assert.Error(t, err)
}

func TestAnnounceURLsDeduplicatesAndOrders(t *testing.T) {
	m := &MetaInfo{
		Announce: "http://a/",
		AnnounceList: [][]string{
			{"http://a/", "http://b/"},
			{"http://c/"},
		},
	}
	assert.Equal(t, []string{"http://a/", "http://b/", "http://c/"}, m.AnnounceURLs())
}
