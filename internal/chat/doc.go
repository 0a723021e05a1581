// Package chat implements the realtime support-chat core: room membership,
// message routing, and the read-side conversation queries.
//
// # Components
//
// Three pieces, wired together by the gateway:
//
//   - Registry: maps live connections to fan-out rooms. All admin
//     connections share the single AdminRoom; each customer connection gets
//     a room named by its user id. Membership is in-memory only and dies
//     with the connection.
//   - Router: accepts one sendMessage submission at a time. It validates the
//     payload, resolves which conversation the message belongs to, persists
//     it atomically through the store, and fans a tagged OutboundEvent out
//     to the addressed room(s).
//   - QueryService: produces the admin inbox projection (one row per
//     conversation with last-message preview and customer name) and
//     per-user thread fetches.
//
// # Addressing
//
// The conversation key is always the customer's user id, regardless of who
// sent the message:
//
//   - user sender: key = sender.userId, events go to AdminRoom
//     (newMessage plus newMessageForAdmin for inbox-refresh consumers)
//   - admin sender: key = recipient.userId, a single newMessage goes to the
//     customer's room
//
// # Delivery semantics
//
// Best-effort, at-most-once push. Persistence always precedes fan-out, so a
// message with no connected recipient is still recorded and appears on the
// next fetch. Broadcast to an empty room is a silent no-op; nothing is
// queued for later delivery.
//
// # Failure handling
//
// All failures in the realtime path are non-fatal to the connection. A
// malformed payload or a store error is logged and answered with a
// sendMessageError event to the originating connection only. An admin
// message with no resolvable recipient is dropped before persistence with
// no user-visible confirmation.
package chat
