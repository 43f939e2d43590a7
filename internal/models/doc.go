// Package models defines the core domain models for Superlists.
//
// # Models
//
//   - User: an account identified by its email address
//   - List: a to-do list, optionally owned by a user and shareable with others
//   - Item: a single line of text on a list
//
// # Design Principles
//
// 1. **Email is the natural key for users**: accounts are provisioned lazily
// on first login, so the email is the only required field.
// 2. **A list is never empty**: lists are created together with their first
// item, and the list's name is always derived from that item. The name is
// never stored separately, so it cannot drift out of sync.
// 3. **Sharing grants visibility, not ownership**: the shared_with relation
// is many-to-many and carries no data of its own.
// 4. **Avoid circular references**: items refer to their list by ID string.
package models
