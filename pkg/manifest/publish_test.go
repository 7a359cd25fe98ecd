package manifest

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestSlotReplaces(t *testing.T) {
	ctx := context.Background()
	var s Slot

	if s.Load() != nil {
		t.Fatal("zero slot should hold nothing")
	}

	if err := s.Publish(ctx, &Manifest{Packages: []string{"pandas", "numpy"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Publish(ctx, &Manifest{Packages: []string{"requests"}}); err != nil {
		t.Fatal(err)
	}

	got := s.Load()
	if !reflect.DeepEqual(got.Packages, []string{"requests"}) {
		t.Errorf("Packages = %v, want only requests", got.Packages)
	}
	if s.Version() != 2 {
		t.Errorf("Version = %d, want 2", s.Version())
	}
}

func TestSlotIsolatedFromCaller(t *testing.T) {
	var s Slot
	m := &Manifest{Packages: []string{"numpy"}}
	_ = s.Publish(context.Background(), m)
	m.Packages[0] = "mutated"

	if s.Load().Packages[0] != "numpy" {
		t.Error("slot shares storage with the published manifest")
	}
}

func TestSlotConcurrentReadersNeverSeeEmpty(t *testing.T) {
	ctx := context.Background()
	var s Slot
	_ = s.Publish(ctx, &Manifest{Packages: []string{"a"}})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				m := s.Load()
				if m == nil || m.Len() != 1 {
					t.Errorf("reader saw %v", m)
					return
				}
			}
		}()
	}
	for i := range 200 {
		name := "a"
		if i%2 == 0 {
			name = "b"
		}
		_ = s.Publish(ctx, &Manifest{Packages: []string{name}})
	}
	close(stop)
	wg.Wait()
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "requirements.txt")
	sink := NewFileSink(path, "")

	if sink.Format != FormatRequirements {
		t.Errorf("Format = %q, want inferred requirements", sink.Format)
	}

	ctx := context.Background()
	if err := sink.Publish(ctx, &Manifest{Packages: []string{"pandas", "numpy"}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := sink.Publish(ctx, &Manifest{Packages: []string{"requests"}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "requests\n" {
		t.Errorf("file = %q, want full replacement", data)
	}

	got, err := sink.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Packages, []string{"requests"}) {
		t.Errorf("Load = %v", got.Packages)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

type fakeRedis struct {
	data map[string]string
	err  error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestRedisSink(t *testing.T) {
	ctx := context.Background()
	client := &fakeRedis{data: map[string]string{}}
	sink := NewRedisSink(client, "", "")

	got, err := sink.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("Load before publish = %v, %v", got, err)
	}

	_ = sink.Publish(ctx, &Manifest{Packages: []string{"pandas", "numpy"}})
	if err := sink.Publish(ctx, &Manifest{Packages: []string{"requests"}, RunID: "r2"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if !strings.Contains(client.data[DefaultRedisKey], `"requests"`) {
		t.Errorf("stored = %q", client.data[DefaultRedisKey])
	}
	got, err = sink.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Packages, []string{"requests"}) || got.RunID != "r2" {
		t.Errorf("Load = %+v", got)
	}
}

func TestRedisSinkError(t *testing.T) {
	boom := stderrors.New("connection refused")
	sink := NewRedisSink(&fakeRedis{data: map[string]string{}, err: boom}, "k", FormatPyEnv)
	if err := sink.Publish(context.Background(), &Manifest{}); !stderrors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

type fakeCollection struct {
	docs map[string]any
}

func (f *fakeCollection) ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	id := filter.(bson.M)["_id"].(string)
	if len(opts) == 0 || opts[0].Upsert == nil || !*opts[0].Upsert {
		return nil, stderrors.New("upsert not set")
	}
	f.docs[id] = replacement
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (f *fakeCollection) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult {
	id := filter.(bson.M)["_id"].(string)
	doc, ok := f.docs[id]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func TestMongoSink(t *testing.T) {
	ctx := context.Background()
	coll := &fakeCollection{docs: map[string]any{}}
	sink := NewMongoSink(coll, "")
	sink.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	got, err := sink.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("Load before publish = %v, %v", got, err)
	}

	_ = sink.Publish(ctx, &Manifest{Packages: []string{"pandas", "numpy"}})
	if err := sink.Publish(ctx, &Manifest{Packages: []string{"requests"}, Source: "demo.ipynb"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(coll.docs) != 1 {
		t.Fatalf("docs = %d, want one document per environment", len(coll.docs))
	}
	doc := coll.docs[DefaultMongoID].(mongoDoc)
	if !reflect.DeepEqual(doc.Packages, []string{"requests"}) || doc.Source != "demo.ipynb" {
		t.Errorf("doc = %+v", doc)
	}

	got, err = sink.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Packages, []string{"requests"}) {
		t.Errorf("Load = %+v", got)
	}
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	var first, last Slot
	boom := stderrors.New("boom")
	failing := Named{Name: "broken", Publisher: PublisherFunc(func(context.Context, *Manifest) error { return boom })}

	err := Multi{&first, failing, &last}.Publish(ctx, &Manifest{Packages: []string{"x"}})
	if !stderrors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("err %q should name the failing publisher", err)
	}
	if first.Load() != nil || last.Load() != nil {
		t.Error("slots must not be swapped when another publisher fails")
	}

	var attempted []string
	record := func(name string) Publisher {
		return PublisherFunc(func(context.Context, *Manifest) error {
			attempted = append(attempted, name)
			return nil
		})
	}
	err = Multi{record("a"), failing, record("b")}.Publish(ctx, &Manifest{})
	if err == nil || strings.Join(attempted, ",") != "a,b" {
		t.Errorf("attempted = %v, err = %v; every external publisher should run", attempted, err)
	}

	live := Named{Name: "live", Publisher: &last}
	if err := (Multi{live, record("c")}).Publish(ctx, &Manifest{Packages: []string{"y"}}); err != nil {
		t.Fatal(err)
	}
	if got := last.Load(); got == nil || got.Packages[0] != "y" {
		t.Errorf("slot after successful publish = %v", got)
	}

	if err := (Multi{&first, Discard}).Publish(ctx, &Manifest{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
