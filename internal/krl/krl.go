// Package krl serializes controller poses as a KUKA KRL program.
package krl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Moult/stone-drone-robots/internal/pose"
)

// ErrMalformedLIN is returned by ParseLIN for lines that are not LIN E6POS
// statements.
var ErrMalformedLIN = errors.New("malformed LIN statement")

// Header opens every program. The controller expects it byte for byte.
const Header = `&ACCESS RVP
&REL 1
&PARAM TEMPLATE = C:\KRC\Roboter\Template\vorgabe
&PARAM EDITMASK = *
DEF hello ( )
GLOBAL INTERRUPT DECL 3 WHEN $STOPMESS==TRUE DO IR_STOPM ( )
INTERRUPT ON 3
BAS (#INITMOV,0 )
$BWDSTART = FALSE
PDAT_ACT = {VEL 45,ACC 100,APO_DIST 50}
FDAT_ACT = {TOOL_NO 6,BASE_NO 6,IPO_FRAME #BASE}
BAS (#PTP_PARAMS,45)
$VEL.CP=0.5
$APO.CDIS=50
$ORI_TYPE=#VAR

`

// Footer closes every program. There is no trailing newline.
const Footer = "\nEND"

const linFormat = "LIN {E6POS:X %d, Y %d, Z %d, A %d, B %d, C %d, E1 0, E2 0, E3 0, E4 0, E5 0, E6 0} C_DIS"

// FormatLIN renders one linear move with approximate positioning.
func FormatLIN(p pose.Pose) string {
	return fmt.Sprintf(linFormat, p.X, p.Y, p.Z, p.A, p.B, p.C)
}

// Program returns Header, one LIN line per pose and Footer.
func Program(poses []pose.Pose) string {
	var sb strings.Builder
	sb.Grow(len(Header) + len(Footer) + len(poses)*96)
	sb.WriteString(Header)
	for _, p := range poses {
		sb.WriteString(FormatLIN(p))
		sb.WriteByte('\n')
	}
	sb.WriteString(Footer)
	return sb.String()
}

// WriteProgram writes Program(poses) to w.
func WriteProgram(w io.Writer, poses []pose.Pose) error {
	if _, err := io.WriteString(w, Program(poses)); err != nil {
		return fmt.Errorf("krl: write program: %w", err)
	}
	return nil
}

// ParseLIN reads back a line produced by FormatLIN. Surrounding
// whitespace is ignored.
func ParseLIN(line string) (pose.Pose, error) {
	var p pose.Pose
	line = strings.TrimSpace(line)
	n, err := fmt.Sscanf(line, linFormat, &p.X, &p.Y, &p.Z, &p.A, &p.B, &p.C)
	if err != nil || n != 6 {
		return pose.Pose{}, fmt.Errorf("krl: %q: %w", line, ErrMalformedLIN)
	}
	return p, nil
}

// ReadPoses scans a program and returns the pose of every LIN line in
// order. Other lines are skipped.
func ReadPoses(r io.Reader) ([]pose.Pose, error) {
	var poses []pose.Pose
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if !strings.HasPrefix(strings.TrimSpace(line), "LIN ") {
			continue
		}
		p, err := ParseLIN(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		poses = append(poses, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("krl: scan: %w", err)
	}
	return poses, nil
}
