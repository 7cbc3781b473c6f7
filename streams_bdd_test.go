package reactor

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/cucumber/godog"
)

// StreamsBDDContext holds everything one scenario builds up: whichever
// subject or property is under test, every named subject a scenario wires
// together, and the running buffer each named subscriber has collected.
type StreamsBDDContext struct {
	defaultPassthrough *PassthroughSubject[string, string]
	defaultReplay      *ReplaySubject[string, string]
	property           *Property[string]

	namedSubjects map[string]*PassthroughSubject[string, string]
	subscriptions []Disposable
	received      map[string][]string
}

func newStreamsBDDContext() *StreamsBDDContext {
	return &StreamsBDDContext{
		namedSubjects: make(map[string]*PassthroughSubject[string, string]),
		received:      make(map[string][]string),
	}
}

func (c *StreamsBDDContext) defaultSignal() Signal[string, string] {
	if c.defaultReplay != nil {
		return c.defaultReplay.AsSignal()
	}
	return c.defaultPassthrough.AsSignal()
}

func (c *StreamsBDDContext) namedSignal(name string) Signal[string, string] {
	return c.namedSubjects[name].AsSignal()
}

func (c *StreamsBDDContext) record(name string) Observer[string, string] {
	return func(ev Event[string, string]) {
		if v, ok := ev.Value(); ok {
			c.received[name] = append(c.received[name], v)
		}
	}
}

func (c *StreamsBDDContext) aPassthroughSubjectOfStrings() error {
	c.defaultPassthrough = NewPassthroughSubject[string, string]()
	return nil
}

func (c *StreamsBDDContext) passthroughSubjectsNamed2(a, b string) error {
	c.namedSubjects[a] = NewPassthroughSubject[string, string]()
	c.namedSubjects[b] = NewPassthroughSubject[string, string]()
	return nil
}

func (c *StreamsBDDContext) passthroughSubjectsNamed3(a, b, d string) error {
	c.namedSubjects[a] = NewPassthroughSubject[string, string]()
	c.namedSubjects[b] = NewPassthroughSubject[string, string]()
	c.namedSubjects[d] = NewPassthroughSubject[string, string]()
	return nil
}

func (c *StreamsBDDContext) aReplaySubjectBufferingTheLastNEvents(n int) error {
	c.defaultReplay = NewReplaySubject[string, string](n)
	return nil
}

func (c *StreamsBDDContext) aPropertyWithInitialValue(v string) error {
	c.property = NewProperty(v)
	return nil
}

func (c *StreamsBDDContext) aSubscriberConnectedToTheSubject(name string) error {
	sub := c.defaultSignal().Observe(c.record(name))
	c.subscriptions = append(c.subscriptions, sub)
	return nil
}

func (c *StreamsBDDContext) aSubscriberConnectedToTheProperty(name string) error {
	sub := c.property.AsSignal().Observe(func(ev Event[string, Never]) {
		if v, ok := ev.Value(); ok {
			c.received[name] = append(c.received[name], v)
		}
	})
	c.subscriptions = append(c.subscriptions, sub)
	return nil
}

func (c *StreamsBDDContext) aSubscriberConnectedToTheSwitchedSignal(name, outer, aVal, aTarget, bVal, bTarget string) error {
	mapping := map[string]string{aVal: aTarget, bVal: bTarget}
	inner := FlatMap(c.namedSignal(outer), FlattenLatest, func(v string) Signal[string, string] {
		return c.namedSignal(mapping[v])
	})
	sub := inner.Observe(c.record(name))
	c.subscriptions = append(c.subscriptions, sub)
	return nil
}

func (c *StreamsBDDContext) aSubscriberConnectedToTheCombinedLatestSignal(name, left, right string) error {
	combined := CombineLatest2[string, string, string](c.namedSignal(left), c.namedSignal(right))
	sub := combined.Observe(func(ev Event[struct {
		A string
		B string
	}, string]) {
		if v, ok := ev.Value(); ok {
			c.received[name] = append(c.received[name], fmt.Sprintf("%s|%s", v.A, v.B))
		}
	})
	c.subscriptions = append(c.subscriptions, sub)
	return nil
}

func (c *StreamsBDDContext) iSendOnTheSubject(v string) error {
	if c.defaultReplay != nil {
		c.defaultReplay.Send(NextEvent[string, string](v))
		return nil
	}
	c.defaultPassthrough.Send(NextEvent[string, string](v))
	return nil
}

func (c *StreamsBDDContext) iSendOnNamed(v, name string) error {
	c.namedSubjects[name].Send(NextEvent[string, string](v))
	return nil
}

func (c *StreamsBDDContext) iSetThePropertyTo(v string) error {
	c.property.SetValue(v)
	return nil
}

var quotedListItem = regexp.MustCompile(`"([^"]*)"`)

func (c *StreamsBDDContext) subscriberShouldHaveReceived(name, list string) error {
	var want []string
	for _, m := range quotedListItem.FindAllStringSubmatch(list, -1) {
		want = append(want, m[1])
	}
	got := c.received[name]
	if len(got) != len(want) {
		return fmt.Errorf("subscriber %q: expected %v, got %v", name, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("subscriber %q: expected %v, got %v", name, want, got)
		}
	}
	return nil
}

func TestStreamsBDD(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sctx *godog.ScenarioContext) {
			c := newStreamsBDDContext()

			sctx.Step(`^a passthrough subject of strings$`, c.aPassthroughSubjectOfStrings)
			sctx.Step(`^passthrough subjects of strings named "([^"]*)" and "([^"]*)"$`, c.passthroughSubjectsNamed2)
			sctx.Step(`^passthrough subjects of strings named "([^"]*)", "([^"]*)" and "([^"]*)"$`, c.passthroughSubjectsNamed3)
			sctx.Step(`^a replay subject of strings buffering the last (\d+) events?$`, c.aReplaySubjectBufferingTheLastNEvents)
			sctx.Step(`^a property with initial value "([^"]*)"$`, c.aPropertyWithInitialValue)

			sctx.Step(`^a subscriber named "([^"]*)" connected to the subject$`, c.aSubscriberConnectedToTheSubject)
			sctx.Step(`^a subscriber named "([^"]*)" connects to the subject$`, c.aSubscriberConnectedToTheSubject)
			sctx.Step(`^a subscriber named "([^"]*)" connected to the property$`, c.aSubscriberConnectedToTheProperty)
			sctx.Step(`^a subscriber named "([^"]*)" connected to a signal that switches, on "([^"]*)", from "([^"]*)" to "([^"]*)" and from "([^"]*)" to "([^"]*)"$`, c.aSubscriberConnectedToTheSwitchedSignal)
			sctx.Step(`^a subscriber named "([^"]*)" connected to the combined-latest signal of "([^"]*)" and "([^"]*)"$`, c.aSubscriberConnectedToTheCombinedLatestSignal)

			sctx.Step(`^I send "([^"]*)" on the subject$`, c.iSendOnTheSubject)
			sctx.Step(`^I send "([^"]*)" on "([^"]*)"$`, c.iSendOnNamed)
			sctx.Step(`^I set the property to "([^"]*)"$`, c.iSetThePropertyTo)

			sctx.Step(`^subscriber "([^"]*)" should have received (.+)$`, c.subscriberShouldHaveReceived)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
