package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-quiz/internal/fqz"
	"memory-quiz/internal/imagenorm"
	"memory-quiz/internal/quiz"
	"memory-quiz/internal/quiz/sqlite"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestService(t *testing.T) *quiz.Service {
	t.Helper()

	store, err := sqlite.NewSQLiteStore(sqlite.DriverCGO, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	images := imagenorm.NewClient(&http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("offline")
	})})
	return quiz.NewService(store, store, fqz.NewCodec(images, 2))
}

func testConfig() Config {
	return Config{
		TimeLimitSeconds: 10,
		TickInterval:     time.Minute,
		RevealDelay:      time.Millisecond,
	}
}

func runScript(t *testing.T, svc *quiz.Service, script string) string {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), strings.NewReader(script), &out, svc, testConfig()))
	return out.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const twoItemDeck = `{"images":[
	{"src":"","names":["x"],"quizType":"text-question","question":"First?"},
	{"src":"","names":["x"],"quizType":"text-question","question":"Second?"}
]}`

func TestRunHelpUnknownAndExit(t *testing.T) {
	out := runScript(t, newTestService(t), "help\nfrobnicate\nlist\nexit\nlist\n")

	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "unknown command. type 'help' for usage.")
	assert.Contains(t, out, "No questions yet.")
	assert.Equal(t, 1, strings.Count(out, "No questions yet."))
}

func TestRunEndsAtEOF(t *testing.T) {
	out := runScript(t, newTestService(t), "list\n")
	assert.Contains(t, out, "No questions yet.")
}

func TestRunAddListShowDelete(t *testing.T) {
	svc := newTestService(t)
	script := strings.Join([]string{
		"add",
		"3",
		"",
		"What is 2+2?",
		"4",
		"Four",
		"",
		"list",
		"show 1",
		"delete 1",
		"yes",
		"list",
		"exit",
	}, "\n") + "\n"

	out := runScript(t, svc, script)

	assert.Contains(t, out, "Added item 1.")
	assert.Contains(t, out, "1. [Text] What is 2+2?\n   Answers: 4, four")
	assert.Contains(t, out, "Item 1 (")
	assert.Contains(t, out, "Deleted item 1.")
	assert.Contains(t, out, "No questions yet.")
	assert.Equal(t, 0, svc.Len())
}

func TestRunAddMultipleChoiceWarnsOnMismatch(t *testing.T) {
	svc := newTestService(t)
	script := strings.Join([]string{
		"add",
		"",
		"",
		"Pick a planet",
		"mars",
		"",
		"*Mars",
		"Moon",
		"*Sun",
		"",
		"no",
		"exit",
	}, "\n") + "\n"

	out := runScript(t, svc, script)

	assert.Contains(t, out, `warning: option "Sun" is marked correct but is not a correct answer`)
	require.Equal(t, 1, svc.Len())

	item, err := svc.Item(0)
	require.NoError(t, err)
	assert.Equal(t, quiz.TypeMultipleChoice, item.Type)
	assert.Equal(t, []string{"Moon"}, item.WrongOptions)
	assert.False(t, item.Shuffle)
	assert.Len(t, item.Options, 3)
}

func TestRunAddRequiresAnswer(t *testing.T) {
	svc := newTestService(t)
	script := "add\n3\n\nQuestion\n\nexit\n"

	out := runScript(t, svc, script)
	assert.Contains(t, out, "Please enter at least one correct answer")
	assert.Equal(t, 0, svc.Len())
}

func TestRunEditKeepsBlankFields(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, "deck.fqz", twoItemDeck)

	script := strings.Join([]string{
		"import " + path,
		"edit 2",
		"",
		"",
		"Renamed?",
		"",
		"exit",
	}, "\n") + "\n"
	out := runScript(t, svc, script)
	assert.Contains(t, out, "Updated item 2.")

	item, err := svc.Item(1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed?", item.Prompt)
	assert.Equal(t, []string{"x"}, item.CorrectAnswers)
}

func TestRunEditToTrueFalseDropsOtherAnswers(t *testing.T) {
	svc := newTestService(t)
	path := writeFile(t, "mc.fqz", `{"images":[{"src":"","names":["Mars"],"quizType":"multiple-choice","question":"Red planet?",
		"allOptions":[{"text":"Mars","isCorrect":true},{"text":"Moon","isCorrect":false}]}]}`)

	script := strings.Join([]string{
		"import " + path,
		"edit 1",
		"4",
		"",
		"",
		"",
		"true",
		"exit",
	}, "\n") + "\n"
	out := runScript(t, svc, script)
	assert.Contains(t, out, "Correct answer (true/false): ")
	assert.Contains(t, out, "Please answer true or false.")
	assert.Contains(t, out, "Updated item 1.")

	item, err := svc.Item(0)
	require.NoError(t, err)
	assert.Equal(t, quiz.TypeTrueFalse, item.Type)
	assert.Equal(t, []string{"true"}, item.CorrectAnswers)
	assert.True(t, item.Accepts("true"))
}

func TestRunImportExportPathsWithSpaces(t *testing.T) {
	svc := newTestService(t)
	in := writeFile(t, "my deck.fqz", twoItemDeck)
	exported := filepath.Join(t.TempDir(), "exported deck.fqz")

	out := runScript(t, svc, "import "+in+"\ntierlist   "+writeFile(t, "my tiers.json", `[{"image":"data:image/png;base64,AA","name":"Cat"}]`)+"\nexport "+exported+"\nexit\n")
	assert.Contains(t, out, "Data imported successfully! Deck now has 2 items.")
	assert.Contains(t, out, "Tierlist imported successfully!")
	assert.Equal(t, 3, svc.Len())

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cat"`)
}

func TestRunImportAndExport(t *testing.T) {
	svc := newTestService(t)
	in := writeFile(t, "deck.fqz", twoItemDeck)
	exported := filepath.Join(t.TempDir(), "out.fqz")

	out := runScript(t, svc, "import "+in+"\nexport "+exported+"\nexit\n")
	assert.Contains(t, out, "Data imported successfully! Deck now has 2 items.")
	assert.Contains(t, out, "Saved 2 items to "+exported)

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	var doc struct {
		Images []map[string]any `json:"images"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Images, 2)
}

func TestRunImportFailuresKeepDeck(t *testing.T) {
	svc := newTestService(t)
	good := writeFile(t, "deck.fqz", twoItemDeck)
	unknown := writeFile(t, "unknown.fqz", `{"questions":[]}`)
	broken := writeFile(t, "broken.fqz", `{"images":[`)

	out := runScript(t, svc, strings.Join([]string{
		"import " + good,
		"import " + unknown,
		"import " + broken,
		"import /does/not/exist.fqz",
		"exit",
	}, "\n")+"\n")

	assert.Contains(t, out, "Invalid file format")
	assert.Contains(t, out, "Error importing file:")
	assert.Equal(t, 2, svc.Len())
}

func TestRunTierlistAppendsWithPlaceholders(t *testing.T) {
	svc := newTestService(t)
	deck := writeFile(t, "deck.fqz", twoItemDeck)
	tierlist := writeFile(t, "tiers.json", `{"poolItems":[
		{"image":"data:image/png;base64,AAAA","name":"Embedded"},
		{"image":"https://img.example/unreachable.png","name":"Remote"}
	]}`)

	out := runScript(t, svc, "import "+deck+"\ntierlist "+tierlist+"\ntierlist "+deck+"\nexit\n")

	assert.Contains(t, out, "Tierlist imported successfully! 2 items added, 1 images could not be loaded.")
	assert.Contains(t, out, "Invalid file format")
	require.Equal(t, 4, svc.Len())

	item, err := svc.Item(3)
	require.NoError(t, err)
	assert.Equal(t, imagenorm.Placeholder, item.Image)
	assert.Equal(t, []string{"remote"}, item.CorrectAnswers)
}

func TestRunDeckFileOnStartup(t *testing.T) {
	svc := newTestService(t)
	cfg := testConfig()
	cfg.DeckFile = writeFile(t, "deck.fqz", twoItemDeck)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), strings.NewReader("exit\n"), &out, svc, cfg))
	assert.Equal(t, 2, svc.Len())
}

func TestRunExportAndPlayNeedItems(t *testing.T) {
	out := runScript(t, newTestService(t), "export\nplay\nexit\n")
	assert.Contains(t, out, "No data to save")
	assert.Contains(t, out, "Please add some items first!")
}

func TestRunTimeCommand(t *testing.T) {
	svc := newTestService(t)
	out := runScript(t, svc, "time\ntime 20\ntime soon\nexit\n")

	assert.Contains(t, out, "Time limit: 10 seconds per question")
	assert.Contains(t, out, "Time limit set to 20 seconds per question")
	assert.Contains(t, out, "invalid time limit")
	assert.Equal(t, 20, svc.TimeLimit())
}

// cliHarness feeds input line by line so answers are not swallowed by the reveal pause.
type cliHarness struct {
	t    *testing.T
	in   *io.PipeWriter
	out  *syncBuffer
	done chan error
}

func startCLI(t *testing.T, svc *quiz.Service, cfg Config) *cliHarness {
	t.Helper()

	pr, pw := io.Pipe()
	h := &cliHarness{t: t, in: pw, out: &syncBuffer{}, done: make(chan error, 1)}
	go func() {
		h.done <- Run(context.Background(), pr, h.out, svc, cfg)
	}()
	t.Cleanup(func() { _ = pw.Close() })
	return h
}

func (h *cliHarness) send(line string) {
	h.t.Helper()
	_, err := io.WriteString(h.in, line+"\n")
	require.NoError(h.t, err)
}

func (h *cliHarness) waitFor(text string, count int) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return strings.Count(h.out.String(), text) >= count
	}, 5*time.Second, 5*time.Millisecond, "waiting for %q x%d in:\n%s", text, count, h.out.String())
}

func (h *cliHarness) exit() {
	h.t.Helper()
	h.send("exit")
	select {
	case err := <-h.done:
		require.NoError(h.t, err)
	case <-time.After(5 * time.Second):
		h.t.Fatalf("cli did not exit")
	}
}

func TestRunPlayScoresAndRecordsHistory(t *testing.T) {
	svc := newTestService(t)
	h := startCLI(t, svc, testConfig())

	h.send("import " + writeFile(t, "deck.fqz", twoItemDeck))
	h.waitFor("Data imported successfully!", 1)

	h.send("play")
	h.waitFor("Your answer: ", 1)
	h.send("X")
	h.waitFor("Correct!", 1)
	h.waitFor("Your answer: ", 2)
	h.send("nope")
	h.waitFor("Wrong. Correct answer: x", 1)
	h.waitFor("Quiz complete! Final score: 1/2 (50%)", 1)

	h.send("history")
	h.waitFor("1. 1/2 (50%) 10s per question", 1)
	h.exit()

	assert.Contains(t, h.out.String(), "Question 2/2  Score: 50%")
}

func TestRunPlayChoiceQuestion(t *testing.T) {
	svc := newTestService(t)
	h := startCLI(t, svc, testConfig())

	h.send("import " + writeFile(t, "tf.fqz", `{"images":[{"src":"","names":["true"],"quizType":"true-false","question":"Water is wet"}]}`))
	h.waitFor("Data imported successfully!", 1)

	h.send("play")
	h.waitFor("B. false", 1)
	h.send("maybe")
	h.waitFor(`Invalid input "maybe"`, 1)
	h.send("B")
	h.waitFor("Wrong. Correct answer: A. true", 1)
	h.waitFor("Final score: 0/1 (0%)", 1)
	h.exit()
}

func TestRunPlayTimesOut(t *testing.T) {
	svc := newTestService(t)
	cfg := testConfig()
	cfg.TimeLimitSeconds = 1
	cfg.TickInterval = 5 * time.Millisecond
	h := startCLI(t, svc, cfg)

	h.send("import " + writeFile(t, "deck.fqz", twoItemDeck))
	h.waitFor("Data imported successfully!", 1)

	h.send("play")
	h.waitFor("Time's up! Correct answer: x", 2)
	h.waitFor("Final score: 0/2 (0%)", 1)
	h.exit()
}
