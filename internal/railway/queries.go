package railway

// GraphQL operation strings. Variables are passed separately through
// Execute; nothing is interpolated into these bodies.

// QueryMe fetches the account owner's identity and credit balance (cents).
const QueryMe = `query me {
  me {
    id
    name
    email
    username
    avatar
    createdAt
    customer {
      creditBalance
    }
  }
}`

// QueryProjects lists projects with their environments and services.
const QueryProjects = `query projects {
  projects {
    edges {
      node {
        id
        name
        region
        createdAt
        environments {
          edges {
            node {
              id
              name
            }
          }
        }
        services {
          edges {
            node {
              id
              name
            }
          }
        }
      }
    }
  }
}`

// QueryAihub fetches the auxiliary aihub credit balance.
const QueryAihub = `query aihub {
  aihubBalance {
    credit
    used
  }
}`

// QueryMonthCost fetches month-to-date estimated service cost.
// Variables: startDate, endDate (ISO dates).
const QueryMonthCost = `query monthCost($startDate: DateTime!, $endDate: DateTime!) {
  usage(measurements: [EST_COST], groupBy: [SERVICE_ID], startDate: $startDate, endDate: $endDate) {
    measurement
    value
    serviceId
  }
}`

// QueryDailyUsage fetches the per-day, per-project usage report for one
// user. Variables: userId, startDate, endDate.
const QueryDailyUsage = `query aggregatedUsage($userId: String!, $startDate: DateTime!, $endDate: DateTime!) {
  aggregatedUsage(
    measurements: [EST_COST]
    groupBy: [PROJECT_ID]
    sampleRateSeconds: 86400
    userId: $userId
    startDate: $startDate
    endDate: $endDate
  ) {
    ts
    value
    projectId
  }
}`

// MutationProjectRename renames a project.
// Variables: id, name.
const MutationProjectRename = `mutation projectUpdate($id: String!, $name: String!) {
  projectUpdate(id: $id, input: { name: $name }) {
    id
    name
  }
}`

// MutationServicePause pauses a service instance.
// Variables: serviceId, environmentId.
const MutationServicePause = `mutation serviceInstancePause($serviceId: String!, $environmentId: String!) {
  serviceInstancePause(serviceId: $serviceId, environmentId: $environmentId)
}`

// MutationServiceRestart restarts a service instance.
// Variables: serviceId, environmentId.
const MutationServiceRestart = `mutation serviceInstanceRestart($serviceId: String!, $environmentId: String!) {
  serviceInstanceRestart(serviceId: $serviceId, environmentId: $environmentId)
}`

// QueryServiceLogs fetches recent log lines for one service.
// Variables: projectId, environmentId, serviceId, limit.
const QueryServiceLogs = `query serviceLogs($projectId: String!, $environmentId: String!, $serviceId: String!, $limit: Int!) {
  logs: environmentLogs(projectId: $projectId, environmentId: $environmentId, serviceId: $serviceId, limit: $limit) {
    timestamp
    message
    severity
  }
}`
