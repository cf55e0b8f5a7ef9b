package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/observable"
)

// Coordinator owns the city list, the weather cache and the selection, and
// orchestrates fetches for them. Every piece of state it exposes is an
// observable value the presentation layer can subscribe to.
//
// Mutations run under a single mutex and never block on the network: each
// fetch runs in its own goroutine and merges its result back under the lock.
// Notifications are delivered in order after the lock is released, so
// listeners may call back into the Coordinator.
type Coordinator struct {
	mu sync.Mutex

	fetcher Fetcher
	cities  CityList
	cache   Cache
	logger  *zap.Logger
	ctx     context.Context

	inflight sync.WaitGroup
	active   int // fetches in flight; the loading flag is active > 0

	current *Record
	errMsg  string
	prefs   Preferences

	notify    observable.Queue
	citiesV   *observable.Value[[]string]
	selectedV *observable.Value[int]
	cacheV    *observable.Value[map[string]Record]
	currentV  *observable.Value[*Record]
	loadingV  *observable.Value[bool]
	errorV    *observable.Value[string]
	updatesV  *observable.Value[WeatherUpdate]
	celsiusV  *observable.Value[bool]
	windV     *observable.Value[bool]
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for fetch tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithContext sets the base context handed to every fetch. Cancelling it
// makes in-flight and future fetches fail; it is meant for shutdown only.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithPreferences sets the initial display preferences.
func WithPreferences(p Preferences) Option {
	return func(c *Coordinator) { c.prefs = p }
}

// NewCoordinator creates a Coordinator over the given list and cache.
func NewCoordinator(fetcher Fetcher, cities CityList, cache Cache, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher: fetcher,
		cities:  cities,
		cache:   cache,
		logger:  zap.NewNop(),
		ctx:     context.Background(),
		prefs:   Preferences{Celsius: true, ShowWindDirection: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("coordinator")

	c.citiesV = observable.NewValue(cities.Names())
	c.selectedV = observable.NewValue(cities.Selected())
	c.cacheV = observable.NewValue(cache.Snapshot())
	c.currentV = observable.NewValue[*Record](nil)
	c.loadingV = observable.NewValue(false)
	c.errorV = observable.NewValue("")
	c.updatesV = observable.NewValue(WeatherUpdate{Position: -1})
	c.celsiusV = observable.NewValue(c.prefs.Celsius)
	c.windV = observable.NewValue(c.prefs.ShowWindDirection)

	return c
}

func (c *Coordinator) Cities() observable.Observable[[]string] { return c.citiesV }
func (c *Coordinator) Selected() observable.Observable[int] { return c.selectedV }
func (c *Coordinator) Cache() observable.Observable[map[string]Record] { return c.cacheV }
func (c *Coordinator) Current() observable.Observable[*Record] { return c.currentV }
func (c *Coordinator) Loading() observable.Observable[bool] { return c.loadingV }
func (c *Coordinator) Error() observable.Observable[string] { return c.errorV }
func (c *Coordinator) Updates() observable.Observable[WeatherUpdate] { return c.updatesV }
func (c *Coordinator) Celsius() observable.Observable[bool] { return c.celsiusV }
func (c *Coordinator) ShowWindDirection() observable.Observable[bool] { return c.windV }

// AddCity appends name and selects it, which triggers a fetch.
// Blank names are ignored. A case-insensitive duplicate publishes an error
// message and returns ErrDuplicateCity without changing anything.
func (c *Coordinator) AddCity(name string) error {
	c.mu.Lock()
	err := c.addCityLocked(name)
	c.mu.Unlock()

	c.notify.Drain()
	return err
}

func (c *Coordinator) addCityLocked(name string) error {
	idx, err := c.cities.Add(name)
	switch {
	case errors.Is(err, ErrEmptyCityName):
		return nil
	case errors.Is(err, ErrDuplicateCity):
		c.setErrorLocked(msgDuplicateCity)
		return err
	case err != nil:
		return err
	}

	c.publishCitiesLocked()
	return c.selectLocked(idx)
}

// RemoveCity removes the city at index and evicts its cached weather.
// If it was the selected city the selection moves to min(index, len-1) and
// that city is fetched; otherwise the selection keeps pointing at the same city.
func (c *Coordinator) RemoveCity(index int) error {
	c.mu.Lock()
	err := c.removeCityLocked(index)
	c.mu.Unlock()

	c.notify.Drain()
	return err
}

func (c *Coordinator) removeCityLocked(index int) error {
	r, err := c.cities.Remove(index)
	switch {
	case errors.Is(err, ErrLastCityProtected):
		c.setErrorLocked(msgLastCity)
		return err
	case err != nil:
		c.invalidIndex("remove", index)
		return err
	}

	c.cache.Delete(r.Name)
	c.publishCitiesLocked()
	c.publishCacheLocked()

	if r.Reselect {
		return c.selectLocked(r.Selected)
	}
	c.publishSelectedLocked()
	return nil
}

// SelectCity makes the city at index the selected one, surfaces its cached
// weather (or clears the current record) and fetches fresh data for it.
func (c *Coordinator) SelectCity(index int) error {
	c.mu.Lock()
	err := c.selectLocked(index)
	c.mu.Unlock()

	c.notify.Drain()
	return err
}

func (c *Coordinator) selectLocked(index int) error {
	if err := c.cities.Select(index); err != nil {
		c.invalidIndex("select", index)
		return err
	}
	city, _ := c.cities.Get(index)

	c.publishSelectedLocked()
	if rec, ok := c.cache.Get(city); ok {
		c.setCurrentLocked(&rec)
	} else {
		c.setCurrentLocked(nil)
	}

	c.startLoadLocked(city, index)
	return nil
}

// LoadWeather fetches city and attributes the result to its first position in the list.
func (c *Coordinator) LoadWeather(city string) {
	c.LoadWeatherAt(city, -1)
}

// LoadWeatherAt fetches city and attributes the result to position.
// A negative position means "look the city up when the result arrives".
func (c *Coordinator) LoadWeatherAt(city string, position int) {
	c.mu.Lock()
	c.startLoadLocked(city, position)
	c.mu.Unlock()

	c.notify.Drain()
}

// LoadAll fetches every city in the list concurrently. Results arrive in any order.
func (c *Coordinator) LoadAll() {
	c.mu.Lock()
	for i, city := range c.cities.Names() {
		c.startLoadLocked(city, i)
	}
	c.mu.Unlock()

	c.notify.Drain()
}

// RefreshCurrent re-fetches the selected city.
func (c *Coordinator) RefreshCurrent() {
	c.mu.Lock()
	idx := c.cities.Selected()
	if city, ok := c.cities.Get(idx); ok {
		c.startLoadLocked(city, idx)
	}
	c.mu.Unlock()

	c.notify.Drain()
}

// SetTemperatureUnit switches between Celsius and Fahrenheit. It never fetches.
func (c *Coordinator) SetTemperatureUnit(celsius bool) {
	c.mu.Lock()
	c.prefs.Celsius = celsius
	c.notify.Push(func() { c.celsiusV.Set(celsius) })
	c.mu.Unlock()

	c.notify.Drain()
}

// SetShowWindDirection toggles the wind direction in presented views. It never fetches.
func (c *Coordinator) SetShowWindDirection(show bool) {
	c.mu.Lock()
	c.prefs.ShowWindDirection = show
	c.notify.Push(func() { c.windV.Set(show) })
	c.mu.Unlock()

	c.notify.Drain()
}

// Wait blocks until every started fetch has completed and its notifications were delivered.
// It must not run concurrently with operations that start new fetches; call it
// once callers have stopped, as on shutdown.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

// State is a consistent copy of everything the Coordinator exposes.
type State struct {
	Cities      []string          `json:"cities"`
	Selected    int               `json:"selected"`
	Cache       map[string]Record `json:"cache"`
	Current     *Record           `json:"current"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error"`
	Preferences Preferences       `json:"preferences"`
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Cities:      c.cities.Names(),
		Selected:    c.cities.Selected(),
		Cache:       c.cache.Snapshot(),
		Loading:     c.active > 0,
		Error:       c.errMsg,
		Preferences: c.prefs,
	}
	if c.current != nil {
		rec := *c.current
		s.Current = &rec
	}
	return s
}

// Views renders every city in list order.
func (s State) Views() []CityView {
	views := make([]CityView, 0, len(s.Cities))
	for _, name := range s.Cities {
		views = append(views, Present(name, s.record(name), s.Preferences))
	}
	return views
}

// CurrentView renders the selected city. ok is false when the list is empty.
func (s State) CurrentView() (view CityView, ok bool) {
	if s.Selected < 0 || s.Selected >= len(s.Cities) {
		return CityView{}, false
	}
	name := s.Cities[s.Selected]
	return Present(name, s.Current, s.Preferences), true
}

func (s State) record(name string) *Record {
	rec, ok := s.Cache[common.NormalizeCity(name)]
	if !ok {
		return nil
	}
	return &rec
}

func (c *Coordinator) startLoadLocked(city string, position int) {
	id := uuid.NewString()

	c.active++
	c.setLoadingLocked(true)
	c.setErrorLocked("")

	c.logger.Debug("loading weather",
		zap.String("request_id", id),
		zap.String("city", city),
		zap.Int("position", position),
	)

	c.inflight.Add(1)
	go c.load(id, city, position)
}

func (c *Coordinator) load(id, city string, position int) {
	defer c.inflight.Done()

	rec, err := c.fetcher.Fetch(c.ctx, city)

	c.mu.Lock()
	c.finishLoadLocked(id, city, position, rec, err)
	c.mu.Unlock()

	c.notify.Drain()
}

func (c *Coordinator) finishLoadLocked(id, city string, position int, rec Record, err error) {
	c.active--

	if err != nil {
		c.logger.Warn("weather fetch failed",
			zap.String("request_id", id),
			zap.String("city", city),
			zap.Error(err),
		)
		c.setErrorLocked(loadFailedMessage(city))
		c.setLoadingLocked(c.active > 0)
		return
	}

	// The city may have been removed while the fetch was in flight; the
	// result is still cached under its key.
	c.cache.Save(city, rec)
	c.publishCacheLocked()

	pos := position
	if pos < 0 {
		pos = c.cities.IndexOf(city)
	}
	if pos >= 0 && pos == c.cities.Selected() {
		c.setCurrentLocked(&rec)
	}
	if pos >= 0 {
		update := WeatherUpdate{Position: pos, City: city, Record: rec, RequestID: id}
		c.notify.Push(func() { c.updatesV.Set(update) })
	}

	c.logger.Debug("weather loaded",
		zap.String("request_id", id),
		zap.String("city", city),
		zap.Int("position", pos),
	)
	c.setLoadingLocked(c.active > 0)
}

func (c *Coordinator) invalidIndex(op string, index int) {
	if strictIndexChecks {
		panic(fmt.Sprintf("weather: %s called with invalid city index %d (len %d)", op, index, c.cities.Len()))
	}
	c.logger.Debug("ignoring invalid city index",
		zap.String("op", op),
		zap.Int("index", index),
		zap.Int("len", c.cities.Len()),
	)
}

func (c *Coordinator) setErrorLocked(msg string) {
	c.errMsg = msg
	c.notify.Push(func() { c.errorV.Set(msg) })
}

func (c *Coordinator) setLoadingLocked(loading bool) {
	c.notify.Push(func() { c.loadingV.Set(loading) })
}

func (c *Coordinator) setCurrentLocked(rec *Record) {
	c.current = rec
	var published *Record
	if rec != nil {
		cp := *rec
		published = &cp
	}
	c.notify.Push(func() { c.currentV.Set(published) })
}

func (c *Coordinator) publishCitiesLocked() {
	names := c.cities.Names()
	c.notify.Push(func() { c.citiesV.Set(names) })
}

func (c *Coordinator) publishSelectedLocked() {
	selected := c.cities.Selected()
	c.notify.Push(func() { c.selectedV.Set(selected) })
}

func (c *Coordinator) publishCacheLocked() {
	snapshot := c.cache.Snapshot()
	c.notify.Push(func() { c.cacheV.Set(snapshot) })
}
