// Package graph serves a live view of a workspace's import graph over
// HTTP and WebSocket.
package graph

import (
	"context"
	"embed"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("elmls.graph")

// GraphData holds the nodes and links of the graph.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node represents a module. ID must be unique.
type Node struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
}

// Link points from an importing module to the module it imports.
type Link struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// IncrementalMessage is sent over WebSocket to update clients.
type IncrementalMessage struct {
	Op    string     `json:"op"`              // "init", "add", "update", "deleteNode", "deleteLink"
	Graph *GraphData `json:"graph,omitempty"` // used for "init"
	Node  *Node      `json:"node,omitempty"`  // for add/update/deleteNode
	Link  *Link      `json:"link,omitempty"`  // for add/deleteLink
}

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Viewer is the graph of one workspace and the clients watching it.
type Viewer struct {
	graphMu sync.Mutex
	graph   GraphData

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	serverMu sync.Mutex
	server   *http.Server
	url      string
}

func NewViewer() *Viewer {
	return &Viewer{
		graph:   GraphData{Nodes: []Node{}, Links: []Link{}},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Handler serves the page under /static/ and the updates on /ws.
func (v *Viewer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("/ws", v.handleWS)
	return mux
}

// Show starts the HTTP and WebSocket server on addr (":0" picks a free
// port) unless it already runs, and returns the URL of the page.
func (v *Viewer) Show(addr string) (string, error) {
	v.serverMu.Lock()
	defer v.serverMu.Unlock()
	if v.server != nil {
		return v.url, nil
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	v.server = &http.Server{Handler: v.Handler()}
	v.url = "http://" + l.Addr().String() + "/static/"

	go func() {
		if err := v.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("graph server error: %s", err)
		}
	}()
	log.Infof("graph viewer at %s", v.url)
	return v.url, nil
}

// Close stops the server and disconnects every client.
func (v *Viewer) Close() error {
	v.serverMu.Lock()
	defer v.serverMu.Unlock()

	v.clientsMu.Lock()
	for conn := range v.clients {
		conn.Close()
		delete(v.clients, conn)
	}
	v.clientsMu.Unlock()

	if v.server == nil {
		return nil
	}
	err := v.server.Close()
	v.server = nil
	return err
}

// Follow seeds the graph from f and applies its change events until ctx
// is canceled.
func (v *Viewer) Follow(ctx context.Context, f *forest.Forest) {
	events := f.Subscribe(ctx)

	for sf := range f.Values(true) {
		v.AddNode(fileNode(sf.ID, sf.ModuleName, sf.IsDependency))
		for _, target := range f.Imports(sf.ID) {
			v.ensureNode(f, target)
			v.AddLink(Link{Source: int(sf.ID), Target: int(target)})
		}
	}

	go func() {
		for event := range events {
			v.apply(f, event)
		}
	}()
}

func (v *Viewer) apply(f *forest.Forest, event forest.Event) {
	switch event.Type {
	case forest.CreateFile:
		v.AddNode(fileNode(event.File.ID, event.File.ModuleName, event.File.IsDependency))
	case forest.UpdateFile:
		v.UpdateNode(fileNode(event.File.ID, event.File.ModuleName, event.File.IsDependency))
	case forest.DeleteFile:
		v.DeleteNode(int(event.File.ID))
	case forest.CreateImport:
		v.ensureNode(f, event.Import.Source)
		v.ensureNode(f, event.Import.Target)
		v.AddLink(Link{Source: int(event.Import.Source), Target: int(event.Import.Target)})
	case forest.DeleteImport:
		v.DeleteLink(Link{Source: int(event.Import.Source), Target: int(event.Import.Target)})
	}
}

func (v *Viewer) ensureNode(f *forest.Forest, id forest.FileID) {
	if v.hasNode(int(id)) {
		return
	}
	if sf, ok := f.ByID(id); ok {
		v.AddNode(fileNode(sf.ID, sf.ModuleName, sf.IsDependency))
	}
}

func fileNode(id forest.FileID, module string, dependency bool) Node {
	group := "workspace"
	if dependency {
		group = "core"
	}
	return Node{ID: int(id), Label: module, Group: group}
}

func (v *Viewer) hasNode(id int) bool {
	v.graphMu.Lock()
	defer v.graphMu.Unlock()
	for _, n := range v.graph.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// AddNode adds a node to the graph, or replaces the node with the same
// ID, and broadcasts the change.
func (v *Viewer) AddNode(node Node) {
	v.graphMu.Lock()
	op := "add"
	for i, n := range v.graph.Nodes {
		if n.ID == node.ID {
			v.graph.Nodes[i] = node
			op = "update"
			break
		}
	}
	if op == "add" {
		v.graph.Nodes = append(v.graph.Nodes, node)
	}
	v.graphMu.Unlock()
	v.broadcastMessage(IncrementalMessage{Op: op, Node: &node})
}

// UpdateNode updates an existing node (matched by ID) and broadcasts.
func (v *Viewer) UpdateNode(node Node) {
	v.AddNode(node)
}

// DeleteNode removes a node by ID together with its links and broadcasts.
func (v *Viewer) DeleteNode(nodeID int) {
	v.graphMu.Lock()
	newNodes := make([]Node, 0, len(v.graph.Nodes))
	for _, n := range v.graph.Nodes {
		if n.ID != nodeID {
			newNodes = append(newNodes, n)
		}
	}
	v.graph.Nodes = newNodes
	newLinks := make([]Link, 0, len(v.graph.Links))
	for _, l := range v.graph.Links {
		if l.Source != nodeID && l.Target != nodeID {
			newLinks = append(newLinks, l)
		}
	}
	v.graph.Links = newLinks
	v.graphMu.Unlock()
	v.broadcastMessage(IncrementalMessage{Op: "deleteNode", Node: &Node{ID: nodeID}})
}

// AddLink adds a link unless present and broadcasts.
func (v *Viewer) AddLink(link Link) {
	v.graphMu.Lock()
	for _, l := range v.graph.Links {
		if l == link {
			v.graphMu.Unlock()
			return
		}
	}
	v.graph.Links = append(v.graph.Links, link)
	v.graphMu.Unlock()
	v.broadcastMessage(IncrementalMessage{Op: "add", Link: &link})
}

// DeleteLink removes a link (exact match) and broadcasts.
func (v *Viewer) DeleteLink(link Link) {
	v.graphMu.Lock()
	newLinks := make([]Link, 0, len(v.graph.Links))
	for _, l := range v.graph.Links {
		if l != link {
			newLinks = append(newLinks, l)
		}
	}
	v.graph.Links = newLinks
	v.graphMu.Unlock()
	v.broadcastMessage(IncrementalMessage{Op: "deleteLink", Link: &link})
}

// GetGraph returns a snapshot of the current graph.
func (v *Viewer) GetGraph() GraphData {
	v.graphMu.Lock()
	defer v.graphMu.Unlock()
	return GraphData{
		Nodes: append([]Node{}, v.graph.Nodes...),
		Links: append([]Link{}, v.graph.Links...),
	}
}

// broadcastMessage marshals and sends a message to all clients.
func (v *Viewer) broadcastMessage(msg IncrementalMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("marshal %s message: %s", msg.Op, err)
		return
	}
	v.clientsMu.Lock()
	defer v.clientsMu.Unlock()
	for conn := range v.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warningf("broadcast error: %s", err)
			conn.Close()
			delete(v.clients, conn)
		}
	}
}

// handleWS upgrades HTTP connections and sends initial graph state.
func (v *Viewer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warningf("ws upgrade error: %s", err)
		return
	}

	// register and send the initial state under the client lock so no
	// broadcast slips in between
	v.clientsMu.Lock()
	state := v.GetGraph()
	data, err := json.Marshal(IncrementalMessage{Op: "init", Graph: &state})
	if err == nil {
		err = conn.WriteMessage(websocket.TextMessage, data)
	}
	if err != nil {
		v.clientsMu.Unlock()
		log.Warningf("sending initial graph: %s", err)
		conn.Close()
		return
	}
	v.clients[conn] = true
	v.clientsMu.Unlock()

	defer func() {
		v.clientsMu.Lock()
		delete(v.clients, conn)
		v.clientsMu.Unlock()
		conn.Close()
	}()

	// keep connection open
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
}
