package scene

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-blend/engine/game_object"
)

// Scene manages a registry of blended characters and ticks them once per frame.
// Objects are updated in parallel on a persistent worker pool; each object's own tick stays
// single-threaded, so its controller, scheduler and animator never see concurrent mutation.
// Scenes can be hot-swapped via the Active flag. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently ticked by the engine.
	Active() bool

	// SetActive sets whether this scene is ticked by the engine.
	SetActive(active bool)

	// Count returns the number of GameObjects in the scene's registry.
	//
	// Returns:
	//   - int: count of registered GameObjects
	Count() int

	// Add registers a GameObject. Objects without an ID are assigned the next free one.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the object's ID
	//   - error: an error if obj is nil, destroyed, or its ID is already taken
	Add(obj game_object.GameObject) (uint64, error)

	// Get retrieves a GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Find retrieves the first GameObject with the given name, in ID order.
	// Returns nil if not found.
	//
	// Parameters:
	//   - name: the object's name
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Find(name string) game_object.GameObject

	// Objects returns every registered GameObject ordered by ID.
	//
	// Returns:
	//   - []game_object.GameObject: the registered objects
	Objects() []game_object.GameObject

	// Remove destroys and unregisters a GameObject.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - bool: true if the object was registered
	Remove(id uint64) bool

	// Clear destroys and unregisters every GameObject.
	Clear()

	// Update ticks every registered object in parallel and waits for all of them.
	// Per-object errors are logged and returned joined; one failing object does not stop the others.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: the joined per-object errors, or nil
	Update(deltaTime float32) error

	// Release destroys every object and stops the update workers. Update is a no-op afterwards.
	Release()

	// Workers returns the number of update workers.
	//
	// Returns:
	//   - int: the configured worker count
	Workers() int
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry map[uint64]game_object.GameObject
	nextID   uint64

	// updatePool is a bounded set of reusable goroutines for the parallel object update.
	// Workers persist across frames, avoiding per-frame goroutine spawn/teardown overhead.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int
	taskID        int

	initial  []game_object.GameObject
	released bool
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new, inactive Scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		registry:      make(map[uint64]game_object.GameObject),
		nextID:        1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the pool after options so WithUpdateWorkers can override the default.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)

	for _, obj := range s.initial {
		if _, err := s.Add(obj); err != nil {
			log.Printf("[Scene] %s: initial object rejected: %v", s.name, err)
		}
	}
	s.initial = nil
	return s
}

// registryAsList returns the registered objects ordered by ID. Callers hold s.mu.
func (s *scene) registryAsList() []game_object.GameObject {
	out := make([]game_object.GameObject, 0, len(s.registry))
	for _, obj := range s.registry {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	if obj == nil {
		return 0, fmt.Errorf("scene: nil object")
	}
	if !obj.Live() {
		return 0, fmt.Errorf("scene: object %q is destroyed", obj.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return 0, fmt.Errorf("scene %s: released", s.name)
	}
	if obj.ID() == 0 {
		for s.registry[s.nextID] != nil {
			s.nextID++
		}
		obj.SetID(s.nextID)
		s.nextID++
	} else if existing := s.registry[obj.ID()]; existing != nil {
		if existing == obj {
			return obj.ID(), nil
		}
		return 0, fmt.Errorf("scene: id %d already used by %q", obj.ID(), existing.Name())
	}
	s.registry[obj.ID()] = obj
	return obj.ID(), nil
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Find(name string) game_object.GameObject {
	for _, obj := range s.Objects() {
		if obj.Name() == name {
			return obj
		}
	}
	return nil
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registryAsList()
}

func (s *scene) Remove(id uint64) bool {
	s.mu.Lock()
	obj, ok := s.registry[id]
	delete(s.registry, id)
	s.mu.Unlock()

	if ok {
		obj.Destroy()
	}
	return ok
}

func (s *scene) Clear() {
	s.mu.Lock()
	objects := s.registryAsList()
	s.registry = make(map[uint64]game_object.GameObject)
	s.mu.Unlock()

	for _, obj := range objects {
		obj.Destroy()
	}
}

func (s *scene) Update(deltaTime float32) error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	objects := s.registryAsList()
	name := s.name
	s.mu.Unlock()

	// A WaitGroup provides the per-frame barrier; pool.Wait() blocks until workers
	// idle-exit, which is unsuitable for frame-rate workloads.
	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		errs   []error
		taskID = s.nextTaskID(len(objects))
	)
	for i, obj := range objects {
		wg.Add(1)
		objCap := obj // capture for closure
		s.updatePool.SubmitTask(worker.Task{
			ID: taskID + i,
			Do: func() (any, error) {
				defer wg.Done()
				if err := objCap.Update(deltaTime); err != nil {
					errMu.Lock()
					errs = append(errs, fmt.Errorf("object %d (%s): %w", objCap.ID(), objCap.Name(), err))
					errMu.Unlock()
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		log.Printf("[Scene] %s: %v", name, err)
	}
	return errors.Join(errs...)
}

// nextTaskID reserves n consecutive task IDs.
func (s *scene) nextTaskID(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.taskID
	s.taskID += n
	return id
}

func (s *scene) Workers() int {
	return s.updateWorkers
}

func (s *scene) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	s.Clear()
	s.updatePool.Stop()
}
