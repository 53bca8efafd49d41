/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package hexi is a hexagonal cellular automaton driven by the
// HexiDirect rule notation.
//
// A HexiDirect rule rewrites a cell based on its own state and the
// states of its six neighbors.  Source text is parsed into abstract
// rules (package core), each abstract rule is expanded into a set of
// concrete directional variants that share a macro group, and a world
// (package world) applies the expanded set to every cell of a finite
// hex grid in simultaneous generations.
//
// The cmd/hexd command hosts worlds behind sessions with HTTP,
// WebSocket, and MQTT surfaces.
package hexi
