package als

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/macropower/alsroute/pkg/gain"
)

// ExternalOutLabel is the upper display string of a track routed to a
// hardware output.
const ExternalOutLabel = "Ext. Out"

const (
	tagDeviceChain = "DeviceChain"
	tagRouting     = "AudioOutputRouting"
	tagTarget      = "Target"
	tagUpper       = "UpperDisplayString"
	tagLower       = "LowerDisplayString"
	tagMpe         = "MpeSettings"
	tagMixer       = "Mixer"
	tagSpeaker     = "Speaker"
	tagVolume      = "Volume"
	tagManual      = "Manual"

	attrValue = "Value"

	speakerOn  = "true"
	speakerOff = "false"
)

// ErrInvalidValue indicates an element whose Value attribute cannot be read.
var ErrInvalidValue = errors.New("invalid value")

// Track is one AudioTrack, MidiTrack or GroupTrack element.
type Track struct {
	el   *etree.Element
	kind string
}

// Kind returns the element tag of the track.
func (t *Track) Kind() string {
	return t.kind
}

// Name returns the track's effective display name. ok is false when the name
// element is missing.
func (t *Track) Name() (string, bool) {
	el := t.el.FindElement("./Name/EffectiveName")
	if el == nil {
		el = t.el.FindElement(".//Name/EffectiveName")
	}
	if el == nil {
		return "", false
	}

	attr := el.SelectAttr(attrValue)
	if attr == nil {
		return "", false
	}

	return attr.Value, true
}

// Output returns the current routing target and lower display string, if the
// routing elements exist.
func (t *Track) Output() (target, label string, ok bool) {
	routing := lookup(t.el, tagDeviceChain, tagRouting)
	if routing == nil {
		return "", "", false
	}

	target = valueOf(routing.SelectElement(tagTarget))
	label = valueOf(routing.SelectElement(tagLower))

	return target, label, target != "" || label != ""
}

// Speaker reports whether the track is audible. ok is false when the speaker
// element does not exist.
func (t *Track) Speaker() (on, ok bool) {
	el := lookup(t.el, tagDeviceChain, tagMixer, tagSpeaker, tagManual)
	if el == nil {
		return false, false
	}

	return !strings.EqualFold(valueOf(el), speakerOff), true
}

// Volume returns the current linear volume. ok is false when the volume
// element does not exist.
func (t *Track) Volume() (float64, bool, error) {
	el := lookup(t.el, tagDeviceChain, tagMixer, tagVolume, tagManual)
	if el == nil {
		return 0, false, nil
	}

	v, err := parseValue(el)
	if err != nil {
		return 0, true, err
	}

	return v, true, nil
}

// SetOutput routes the track to a hardware output, creating the routing
// elements as needed. Any per-channel MPE configuration is cleared.
func (t *Track) SetOutput(target, label string) {
	routing := ensure(t.el, tagDeviceChain, tagRouting)

	setValue(ensure(routing, tagTarget), target)
	setValue(ensure(routing, tagUpper), ExternalOutLabel)
	setValue(ensure(routing, tagLower), label)

	clearChildren(ensure(routing, tagMpe))
}

// EnsureSpeaker creates the speaker element with its default (audible) value
// if it does not exist.
func (t *Track) EnsureSpeaker() {
	t.speaker()
}

// SetSpeaker sets whether the track is audible.
func (t *Track) SetSpeaker(on bool) {
	v := speakerOn
	if !on {
		v = speakerOff
	}

	setValue(t.speaker(), v)
}

// EnsureVolume returns the current linear volume, creating the volume element
// at [gain.DefaultLinear] if it does not exist.
func (t *Track) EnsureVolume() (float64, error) {
	return parseValue(t.volume())
}

// SetVolume writes a linear volume.
func (t *Track) SetVolume(linear float64) {
	setValue(t.volume(), strconv.FormatFloat(linear, 'f', -1, 64))
}

func (t *Track) speaker() *etree.Element {
	speaker := ensure(t.el, tagDeviceChain, tagMixer, tagSpeaker)

	return ensureDefault(speaker, tagManual, speakerOn)
}

func (t *Track) volume() *etree.Element {
	volume := ensure(t.el, tagDeviceChain, tagMixer, tagVolume)

	return ensureDefault(volume, tagManual, gain.DefaultValue)
}

// ensure walks tags from parent, creating each missing child.
func ensure(parent *etree.Element, tags ...string) *etree.Element {
	el := parent
	for _, tag := range tags {
		child := el.SelectElement(tag)
		if child == nil {
			child = el.CreateElement(tag)
		}

		el = child
	}

	return el
}

// ensureDefault returns the tag child of parent, creating it with a Value
// attribute of dflt if it does not exist.
func ensureDefault(parent *etree.Element, tag, dflt string) *etree.Element {
	child := parent.SelectElement(tag)
	if child == nil {
		child = parent.CreateElement(tag)
		child.CreateAttr(attrValue, dflt)
	}

	return child
}

// lookup walks tags from parent without creating anything.
func lookup(parent *etree.Element, tags ...string) *etree.Element {
	el := parent
	for _, tag := range tags {
		el = el.SelectElement(tag)
		if el == nil {
			return nil
		}
	}

	return el
}

// clearChildren removes all child elements and text of el, keeping el and its
// attributes.
func clearChildren(el *etree.Element) {
	for len(el.Child) > 0 {
		el.RemoveChildAt(0)
	}
}

func setValue(el *etree.Element, v string) {
	el.CreateAttr(attrValue, v)
}

func valueOf(el *etree.Element) string {
	if el == nil {
		return ""
	}

	return el.SelectAttrValue(attrValue, "")
}

func parseValue(el *etree.Element) (float64, error) {
	raw := el.SelectAttrValue(attrValue, gain.DefaultValue)

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidValue, el.GetPath(), raw, err)
	}

	return v, nil
}
