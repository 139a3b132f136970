package krl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moult/stone-drone-robots/internal/pose"
)

const twoPoseProgram = "&ACCESS RVP\n" +
	"&REL 1\n" +
	"&PARAM TEMPLATE = C:\\KRC\\Roboter\\Template\\vorgabe\n" +
	"&PARAM EDITMASK = *\n" +
	"DEF hello ( )\n" +
	"GLOBAL INTERRUPT DECL 3 WHEN $STOPMESS==TRUE DO IR_STOPM ( )\n" +
	"INTERRUPT ON 3\n" +
	"BAS (#INITMOV,0 )\n" +
	"$BWDSTART = FALSE\n" +
	"PDAT_ACT = {VEL 45,ACC 100,APO_DIST 50}\n" +
	"FDAT_ACT = {TOOL_NO 6,BASE_NO 6,IPO_FRAME #BASE}\n" +
	"BAS (#PTP_PARAMS,45)\n" +
	"$VEL.CP=0.5\n" +
	"$APO.CDIS=50\n" +
	"$ORI_TYPE=#VAR\n" +
	"\n" +
	"LIN {E6POS:X 0, Y 0, Z 0, A 0, B 0, C 0, E1 0, E2 0, E3 0, E4 0, E5 0, E6 0} C_DIS\n" +
	"LIN {E6POS:X 0, Y 0, Z 1, A 0, B 0, C 0, E1 0, E2 0, E3 0, E4 0, E5 0, E6 0} C_DIS\n" +
	"\n" +
	"END"

func TestFormatLIN(t *testing.T) {
	got := FormatLIN(pose.Pose{X: -1200, Y: 35, Z: 8, A: -30, B: 90, C: 45})
	assert.Equal(t, "LIN {E6POS:X -1200, Y 35, Z 8, A -30, B 90, C 45, E1 0, E2 0, E3 0, E4 0, E5 0, E6 0} C_DIS", got)
}

func TestProgram_ByteExact(t *testing.T) {
	poses := []pose.Pose{{}, {Z: 1}}
	assert.Equal(t, twoPoseProgram, Program(poses))

	var buf bytes.Buffer
	require.NoError(t, WriteProgram(&buf, poses))
	assert.Equal(t, twoPoseProgram, buf.String())
}

func TestProgram_Empty(t *testing.T) {
	got := Program(nil)
	assert.Equal(t, Header+Footer, got)
	assert.True(t, strings.HasSuffix(got, "$ORI_TYPE=#VAR\n\n\nEND"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteProgram_WriterError(t *testing.T) {
	err := WriteProgram(failingWriter{}, []pose.Pose{{}})
	assert.ErrorContains(t, err, "disk full")
}

func TestParseLIN(t *testing.T) {
	want := pose.Pose{X: -1200, Y: 35, Z: 8, A: -30, B: 90, C: 45}
	got, err := ParseLIN("  " + FormatLIN(want) + "\r")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, bad := range []string{
		"",
		"PTP {E6POS:X 0, Y 0, Z 0, A 0, B 0, C 0}",
		"LIN {E6POS:X zero, Y 0, Z 0, A 0, B 0, C 0, E1 0, E2 0, E3 0, E4 0, E5 0, E6 0} C_DIS",
		"LIN {E6POS:X 1, Y 2}",
	} {
		_, err := ParseLIN(bad)
		assert.ErrorIs(t, err, ErrMalformedLIN, bad)
	}
}

func TestReadPoses(t *testing.T) {
	poses, err := ReadPoses(strings.NewReader(twoPoseProgram))
	require.NoError(t, err)
	assert.Equal(t, []pose.Pose{{}, {Z: 1}}, poses)

	_, err = ReadPoses(strings.NewReader("DEF x ( )\nLIN {broken}\nEND"))
	assert.ErrorIs(t, err, ErrMalformedLIN)
	assert.ErrorContains(t, err, "line 2")
}
