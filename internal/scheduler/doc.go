// Package scheduler implements the §4.2 database-resident scheduler: every
// timer is a row in a table, the runtime is trusted to invoke the bound
// reducer at scheduled_at, and cancellation/rescheduling are ordinary row
// delete/update operations rather than calls into an external scheduling
// service. It also implements the agent prelude every repeating agent
// shares (server-or-admin check, Config.agents_enabled check) and the
// wall-clock "next daily tick" computation used by the daily-at-time
// agents (player_housing_income, rent_collector, traveler_task).
package scheduler
