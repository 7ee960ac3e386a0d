package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/ladon/pkg/domain"
)

type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Time       string          `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	Properties []junitProperty `xml:"properties>property,omitempty"`
	Cases      []junitCase     `xml:"testcase"`
	SystemOut  string          `xml:"system-out,omitempty"`
}

type junitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitProblem `xml:"failure,omitempty"`
	Error     *junitProblem `xml:"error,omitempty"`
}

type junitProblem struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnit writes the snapshot as a JUnit XML report holding one test case for the run.
func JUnit(w io.Writer, snap *domain.ResultSnapshot) error {
	name := snap.Config.ClassName
	if name == "" {
		name = "ladon"
	}

	suite := junitSuite{
		Name: name,
		Time: seconds(snap.TotalDuration()),
	}
	if len(snap.Timings) > 0 {
		suite.Timestamp = snap.Timings[0].Start.UTC().Format(time.RFC3339)
	}

	suite.Properties = append(suite.Properties,
		junitProperty{Name: "id", Value: snap.Config.ID},
		junitProperty{Name: "log_level", Value: snap.Config.LogLevel.String()},
	)
	for _, k := range sortedKeys(snap.Config.Flags) {
		suite.Properties = append(suite.Properties, junitProperty{Name: "flag." + k, Value: fmt.Sprint(snap.Config.Flags[k])})
	}

	log := logText(snap.Log)
	tc := junitCase{
		Name:      snap.Config.ID,
		ClassName: name,
		Time:      suite.Time,
	}
	switch snap.Status {
	case domain.StatusFailure:
		tc.Failure = &junitProblem{Message: firstMessage(snap.Log, domain.StatusFailure), Type: string(snap.Status), Body: log}
		suite.Failures = 1
	case domain.StatusError:
		tc.Error = &junitProblem{Message: firstMessage(snap.Log, domain.StatusError), Type: string(snap.Status), Body: log}
		suite.Errors = 1
	}
	suite.Cases = []junitCase{tc}
	suite.Tests = len(suite.Cases)
	suite.SystemOut = log

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(junitSuites{Suites: []junitSuite{suite}}); err != nil {
		return fmt.Errorf("failed to encode junit report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func seconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.3f", d.Seconds())
}

func logText(entries []domain.LogEntry) string {
	var b strings.Builder
	for _, e := range entries {
		writeEntry(&b, "", e)
	}
	return b.String()
}

func firstMessage(entries []domain.LogEntry, s domain.Status) string {
	for _, e := range entries {
		if e.Level >= domain.LevelError {
			return e.Message()
		}
	}
	return string(s)
}
