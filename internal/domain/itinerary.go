package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// Distance and travel duration between two points under one routing mode.
// Geometry is empty when the leg was estimated locally.
type TravelLeg struct {
	DistanceKm  float64
	DurationMin float64
	Geometry    orb.LineString
}

type BlockType string

const (
	BlockTitle BlockType = "title"
	BlockIntro BlockType = "intro"
	BlockStop  BlockType = "stop"
)

type StopKind string

const (
	StopTravel     StopKind = "travel"
	StopWalk       StopKind = "walk"
	StopLunch      StopKind = "lunch"
	StopAdjustment StopKind = "adjustment"
)

// Timed unit of a day narrative. Start may textually exceed End for
// adjustment stops on overrunning days.
type Stop struct {
	Kind        StopKind
	Start       Clock
	End         Clock
	DurationMin float64
	DistanceKm  float64
	Label       string
	Lines       []string
}

// Text renders the stop as one paragraph: "start – end – N km – label : lines".
func (s Stop) Text() string {
	head := fmt.Sprintf("%s – %s – %d km – %s : ", s.Start.HHMM(), s.End.HHMM(), int(math.Round(s.DistanceKm)), s.Label)
	return head + strings.Join(s.Lines, " ")
}

// Block is one entry of a day. Title and intro blocks carry Text only;
// stop blocks carry Stop.
type Block struct {
	Type BlockType
	Text string
	Stop *Stop
}

func TitleBlock(text string) Block { return Block{Type: BlockTitle, Text: text} }

func IntroBlock(text string) Block { return Block{Type: BlockIntro, Text: text} }

func StopBlock(s Stop) Block {
	return Block{Type: BlockStop, Text: s.Text(), Stop: &s}
}

// Walking activity attached to a waypoint by name. Zero DurationMin means
// the default duration applies.
type Walk struct {
	Near        string
	DurationMin int
	Route       string
}

type DaySpec struct {
	Label     string
	Intro     string
	Waypoints []Point
	Walks     []Walk
	LunchHint string
}

func (d DaySpec) Validate(index int) error {
	if len(d.Waypoints) < 2 {
		return Invalid(fmt.Sprintf("days[%d].waypoints", index), "at least 2 waypoints are required, got %d", len(d.Waypoints))
	}
	for i, w := range d.Walks {
		if w.DurationMin < 0 {
			return Invalid(fmt.Sprintf("days[%d].walks[%d].duration_min", index, i), "must not be negative")
		}
	}
	return nil
}

type DayResult struct {
	Title  string
	Blocks []Block
	Tracks []orb.LineString
}

// Stops returns the stop blocks of the day in order.
func (d DayResult) Stops() []Stop {
	out := make([]Stop, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Stop != nil {
			out = append(out, *b.Stop)
		}
	}
	return out
}

// Itinerary is the output of one generation request.
//
// VisitedPoints is de-duplicated by PointKey. Markers keeps every visited
// waypoint in visit order, duplicates included, for map rendering. Base is
// the point the map is centered on.
type Itinerary struct {
	Title         string
	Subtitle      string
	Base          Point
	Days          []DayResult
	VisitedPoints []Point
	Markers       []Point
}
