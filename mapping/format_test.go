package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip parses fixture, writes it back out, and reparses the result,
// asserting the two parsed models are structurally identical — the
// round-trip property every detectable and non-detectable text format must
// satisfy regardless of its on-disk shape.
func roundTrip(t *testing.T, f Format, fixture string) *Mappings {
	t.Helper()
	m1, err := f.Parse(strings.NewReader(fixture))
	require.NoError(t, err)

	lines, err := f.Write(m1)
	require.NoError(t, err)
	text2 := strings.Join(lines, "\n")

	m2, err := f.Parse(strings.NewReader(text2))
	require.NoError(t, err)

	assert.Equal(t, m1, m2)
	return m1
}

func TestTinyV1RoundTrip(t *testing.T) {
	fixture := "v1\tofficial\tnamed\n" +
		"CLASS\ta/b/Foo\ta/b/Bar\n" +
		"FIELD\ta/b/Foo\tI\tx\ty\n" +
		"METHOD\ta/b/Foo\t()V\tm\tn\n"
	m := roundTrip(t, TinyV1Format{}, fixture)
	assert.Equal(t, []string{"official", "named"}, m.Namespaces)
	require.Len(t, m.Classes, 1)
	assert.Equal(t, []string{"a/b/Foo", "a/b/Bar"}, m.Classes[0].Names)
}

func TestTinyV1DetectRequiresV1Header(t *testing.T) {
	assert.True(t, TinyV1Format{}.Detect("v1\tofficial\tnamed\n"))
	assert.False(t, TinyV1Format{}.Detect("tiny\t2\t0\tofficial\tnamed\n"))
}

func TestTinyV2RoundTrip(t *testing.T) {
	fixture := "tiny\t2\t0\tofficial\tnamed\n" +
		"c\ta/b/Foo\ta/b/Bar\n" +
		"\tf\tI\tx\ty\n" +
		"\tm\t()V\tm\tn\n" +
		"\t\tp\t0\tp0\tp1\n"
	m := roundTrip(t, TinyV2Format{}, fixture)
	require.Len(t, m.Classes, 1)
	require.Len(t, m.Classes[0].Methods, 1)
	require.Len(t, m.Classes[0].Methods[0].Parameters, 1)
	assert.Equal(t, []string{"p0", "p1"}, m.Classes[0].Methods[0].Parameters[0].Names)
}

func TestTinyV2DetectRequiresTiny2Header(t *testing.T) {
	assert.True(t, TinyV2Format{}.Detect("tiny\t2\t0\tofficial\tnamed\n"))
	assert.False(t, TinyV2Format{}.Detect("v1\tofficial\tnamed\n"))
}

func TestTinyV2HeaderPropsRoundTrip(t *testing.T) {
	fixture := "tiny\t2\t0\tofficial\tnamed\n" +
		"\tp\tescaped-names\n" +
		"\tp\tsource-namespace\tofficial\n" +
		"c\ta/b/Foo\ta/b/Bar\n"
	m := roundTrip(t, TinyV2Format{}, fixture)
	assert.Equal(t, map[string]string{"escaped-names": "", "source-namespace": "official"}, m.HeaderProps)
}

func TestTinyV2RejectsPropertyLineAfterClassLine(t *testing.T) {
	fixture := "tiny\t2\t0\tofficial\tnamed\n" +
		"c\ta/b/Foo\ta/b/Bar\n" +
		"\tp\tescaped-names\n"
	_, err := TinyV2Format{}.Parse(strings.NewReader(fixture))
	assert.Error(t, err)
}

func TestSRGRoundTrip(t *testing.T) {
	fixture := "CL: a/b/Foo a/b/Bar\n" +
		"FD: a/b/Foo/x a/b/Bar/y\n" +
		"MD: a/b/Foo/m ()V a/b/Bar/n ()V\n"
	m := roundTrip(t, SRGFormat{}, fixture)
	assert.Equal(t, []string{"obf", "srg"}, m.Namespaces)
	require.Len(t, m.Classes, 1)
	require.Len(t, m.Classes[0].Fields, 1)
	assert.Nil(t, m.Classes[0].Fields[0].Desc)
}

func TestSRGDetectRequiresKnownPrefix(t *testing.T) {
	assert.True(t, SRGFormat{}.Detect("CL: a/b/Foo a/b/Bar\n"))
	assert.False(t, SRGFormat{}.Detect("a/b/Foo a/b/Bar\n"))
}

func TestXSRGRoundTrip(t *testing.T) {
	fixture := "CL: a/b/Foo a/b/Bar\n" +
		"FD: a/b/Foo/x I a/b/Bar/y\n" +
		"MD: a/b/Foo/m ()V a/b/Bar/n ()V\n"
	m := roundTrip(t, XSRGFormat{}, fixture)
	require.Len(t, m.Classes[0].Fields, 1)
	require.NotNil(t, m.Classes[0].Fields[0].Desc)
	assert.Equal(t, "I", *m.Classes[0].Fields[0].Desc)
}

func TestXSRGDetectRequiresFieldDescriptor(t *testing.T) {
	assert.True(t, XSRGFormat{}.Detect("CL: a/b/Foo a/b/Bar\nFD: a/b/Foo/x I a/b/Bar/y\n"))
	assert.False(t, XSRGFormat{}.Detect("CL: a/b/Foo a/b/Bar\nFD: a/b/Foo/x a/b/Bar/y\n"))
}

func TestCSRGRoundTrip(t *testing.T) {
	fixture := "a/b/Foo a/b/Bar\n" +
		"a/b/Foo x y\n" +
		"a/b/Foo m ()V n\n"
	m := roundTrip(t, CSRGFormat{}, fixture)
	require.Len(t, m.Classes[0].Fields, 1)
	assert.Nil(t, m.Classes[0].Fields[0].Desc)
}

func TestCSRGNeverDetected(t *testing.T) {
	assert.False(t, CSRGFormat{}.Detect("a/b/Foo a/b/Bar\n"))
}

func TestTSRGv1RoundTrip(t *testing.T) {
	fixture := "a/b/Foo a/b/Bar\n" +
		"\tx y\n" +
		"\tm ()V n\n"
	m := roundTrip(t, TSRGv1Format{}, fixture)
	assert.Equal(t, []string{"obf", "srg"}, m.Namespaces)
	require.Len(t, m.Classes[0].Fields, 1)
	require.Len(t, m.Classes[0].Methods, 1)
}

func TestTSRGv1DetectLooksForIndentedMemberLine(t *testing.T) {
	assert.True(t, TSRGv1Format{}.Detect("a/b/Foo a/b/Bar\n\tx y\n"))
	assert.False(t, TSRGv1Format{}.Detect("a/b/Foo a/b/Bar\n"))
}

func TestTSRGv2RoundTrip(t *testing.T) {
	fixture := "tsrg2 official named\n" +
		"a/b/Foo a/b/Bar\n" +
		"\tx y\n" +
		"\tm ()V n\n" +
		"\t\t0 p0\n"
	m := roundTrip(t, TSRGv2Format{}, fixture)
	require.Len(t, m.Classes[0].Methods, 1)
	require.Len(t, m.Classes[0].Methods[0].Parameters, 1)
	assert.Equal(t, 0, m.Classes[0].Methods[0].Parameters[0].Index)
}

func TestTSRGv2DetectRequiresHeaderToken(t *testing.T) {
	assert.True(t, TSRGv2Format{}.Detect("tsrg2 official named\n"))
	assert.False(t, TSRGv2Format{}.Detect("a/b/Foo a/b/Bar\n"))
}

func TestEnigmaRoundTrip(t *testing.T) {
	fixture := "CLASS a/b/Foo a/b/Bar\n" +
		"\tFIELD x y I\n" +
		"\tMETHOD m n ()V\n" +
		"\t\tARG 0 p0\n"
	m := roundTrip(t, EnigmaFormat{}, fixture)
	assert.Equal(t, []string{"obf", "named"}, m.Namespaces)
	require.Len(t, m.Classes[0].Methods[0].Parameters, 1)
}

func TestEnigmaNestedInnerClassNameIsDollarJoined(t *testing.T) {
	fixture := "CLASS a/b/Foo a/b/Bar\n" +
		"\tCLASS Inner InnerRenamed\n"
	m, err := EnigmaFormat{}.Parse(strings.NewReader(fixture))
	require.NoError(t, err)
	require.Len(t, m.Classes, 2)
	assert.Equal(t, []string{"a/b/Foo$Inner", "a/b/Bar$InnerRenamed"}, m.Classes[1].Names)
}

func TestEnigmaDetectRequiresClassPrefix(t *testing.T) {
	assert.True(t, EnigmaFormat{}.Detect("CLASS a/b/Foo a/b/Bar\n"))
	assert.False(t, EnigmaFormat{}.Detect("a/b/Foo a/b/Bar\n"))
}

func TestProguardRoundTrip(t *testing.T) {
	fixture := "a.b.Foo -> a.b.Bar:\n" +
		"    int x -> y\n" +
		"    void m() -> n\n"
	m := roundTrip(t, ProguardFormat{}, fixture)
	assert.Equal(t, []string{"named", "official"}, m.Namespaces)
	assert.Equal(t, []string{"a/b/Foo", "a/b/Bar"}, m.Classes[0].Names)
	assert.Equal(t, "I", *m.Classes[0].Fields[0].Desc)
	assert.Equal(t, "()V", m.Classes[0].Methods[0].Desc)
}

func TestProguardStripsLineNumberPrefix(t *testing.T) {
	fixture := "a.b.Foo -> a.b.Bar:\n" +
		"    12:34:void m() -> n\n"
	m, err := ProguardFormat{}.Parse(strings.NewReader(fixture))
	require.NoError(t, err)
	require.Len(t, m.Classes[0].Methods, 1)
	assert.Equal(t, "m", m.Classes[0].Methods[0].Names[0])
}

func TestProguardDetectRequiresArrowAndColon(t *testing.T) {
	assert.True(t, ProguardFormat{}.Detect("a.b.Foo -> a.b.Bar:\n"))
	assert.False(t, ProguardFormat{}.Detect("a/b/Foo a/b/Bar\n"))
}

func TestRecafRoundTrip(t *testing.T) {
	fixture := "a/b/Foo a/b/Bar\n" +
		"a/b/Foo.x y\n" +
		"a/b/Foo.m()V n\n"
	m := roundTrip(t, RecafFormat{}, fixture)
	require.Len(t, m.Classes[0].Fields, 1)
	require.Len(t, m.Classes[0].Methods, 1)
	assert.Equal(t, "()V", m.Classes[0].Methods[0].Desc)
}

func TestRecafNeverDetected(t *testing.T) {
	assert.False(t, RecafFormat{}.Detect("a/b/Foo a/b/Bar\n"))
}

func TestCompactedRoundTripV1(t *testing.T) {
	m := sampleMappings()
	data, err := CompactedFormat{}.WriteBinary(m, 1)
	require.NoError(t, err)
	out, err := CompactedFormat{}.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, m.Namespaces, out.Namespaces)
	assert.Equal(t, m.Classes, out.Classes)
}

func TestCompactedRoundTripV2UsesDictionary(t *testing.T) {
	m := &Mappings{
		Namespaces: []string{"official", "named"},
		Classes: []MappedClass{
			{Names: []string{"a/b/Foo", "a/b/Bar"}},
			{Names: []string{"a/b/Other", "a/b/Another"}},
		},
	}
	data, err := CompactedFormat{}.WriteBinary(m, 2)
	require.NoError(t, err)
	out, err := CompactedFormat{}.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, m.Classes, out.Classes)
	assert.Equal(t, 2, out.CompactedVer)
}

func TestCompactedRejectsBadMagic(t *testing.T) {
	_, err := CompactedFormat{}.Parse(strings.NewReader("nope"))
	assert.Error(t, err)
}

func TestAllFormatsNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range AllFormats() {
		assert.False(t, seen[f.Name()], "duplicate format name %q", f.Name())
		seen[f.Name()] = true
	}
}

func TestFormatByNameFindsRegisteredFormats(t *testing.T) {
	f, ok := FormatByName("tsrg2")
	require.True(t, ok)
	assert.Equal(t, "tsrg2", f.Name())

	_, ok = FormatByName("compacted")
	assert.False(t, ok, "compacted is binary and excluded from the text format registry")
}

func TestDetectPrefersEarlierFormatInFixedOrder(t *testing.T) {
	// Tiny v1 and SRG headers don't collide, but detection order still
	// matters when two formats could plausibly both match; exercise the
	// documented fixed order directly.
	assert.Equal(t, "tiny", Detect("v1\tofficial\tnamed\n").Name())
	assert.Equal(t, "tiny2", Detect("tiny\t2\t0\tofficial\tnamed\n").Name())
	assert.Equal(t, "srg", Detect("CL: a/b/Foo a/b/Bar\n").Name())
	assert.Equal(t, "proguard", Detect("a.b.Foo -> a.b.Bar:\n").Name())
	assert.Nil(t, Detect("a/b/Foo a/b/Bar\n"))
}

func TestParseAutoDetectParsesRecognizedInput(t *testing.T) {
	m, err := ParseAutoDetect("CL: a/b/Foo a/b/Bar\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b/Foo", "a/b/Bar"}, m.Classes[0].Names)
}

func TestParseAutoDetectFailsOnUnrecognizedInput(t *testing.T) {
	_, err := ParseAutoDetect("a/b/Foo a/b/Bar\n")
	assert.Error(t, err)
}
